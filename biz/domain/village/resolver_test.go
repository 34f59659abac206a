package village

import "testing"

func roster() []*VillageMember {
	return []*VillageMember{
		{Id: "m-1", Name: "Susan", Role: "family", Phone: "+1001", Available: true},
		{Id: "m-2", Name: "Tom", Role: "neighbor", Phone: "+1002", Available: true},
		{Id: "m-3", Name: "Dr. Martinez", Role: "medical", Phone: "+1003", Available: true},
		{Id: "m-4", Name: "Jane", Role: "volunteer", Phone: "+1004", Available: true},
	}
}

func TestResolvePreferredRole(t *testing.T) {
	cases := []struct {
		actionType string
		want       string
	}{
		{"call_family", "m-1"},
		{"call_medical", "m-3"},
		{"call_neighbor", "m-2"},
		{"call_volunteer", "m-4"},
	}
	for _, c := range cases {
		got := Resolve(roster(), c.actionType, "")
		if got == nil || got.Id != c.want {
			t.Errorf("Resolve(%s) = %v, want %s", c.actionType, got, c.want)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := roster()
	first := Resolve(r, "call_medical", "")
	for i := 0; i < 10; i++ {
		if got := Resolve(r, "call_medical", ""); got.Id != first.Id {
			t.Fatalf("第%d次结果不同: %s != %s", i, got.Id, first.Id)
		}
	}
}

func TestResolveSecondChoice(t *testing.T) {
	r := roster()
	// medical不可用时应落到volunteer
	r[2].Available = false
	got := Resolve(r, "call_medical", "")
	if got == nil || got.Id != "m-4" {
		t.Errorf("got %v, want m-4", got)
	}
}

func TestResolveRoleHint(t *testing.T) {
	// 未知动作类型时用roleHint兜底
	got := Resolve(roster(), "send_message", "neighbor")
	if got == nil || got.Id != "m-2" {
		t.Errorf("got %v, want m-2", got)
	}
}

func TestResolveCaseInsensitiveSubstring(t *testing.T) {
	r := []*VillageMember{
		{Id: "m-9", Role: "Family Member", Available: true},
	}
	got := Resolve(r, "call_family", "")
	if got == nil || got.Id != "m-9" {
		t.Errorf("got %v, want m-9", got)
	}
}

func TestResolveFallbackAnyAvailable(t *testing.T) {
	r := roster()
	// 偏好角色全部不可用, 任意可用成员兜底
	r[0].Available = false
	got := Resolve(r, "call_family", "")
	if got == nil {
		t.Fatal("expect fallback member, got nil")
	}
	if got.Id == "m-1" {
		t.Error("不可用成员不应被选中")
	}
}

func TestResolveNoneAvailable(t *testing.T) {
	r := roster()
	for _, m := range r {
		m.Available = false
	}
	if got := Resolve(r, "call_family", ""); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRegistryFallbackProfile(t *testing.T) {
	r := NewRegistry()
	e := r.Get("no-such-elder")
	if e == nil || e.Name != "Margaret Chen" {
		t.Fatalf("未命中应回落演示档案, got %v", e)
	}
	if len(e.Village) == 0 {
		t.Error("演示档案应有村庄名册")
	}
}
