package mq

import "testing"

func TestParseRecordMsg(t *testing.T) {
	m, err := parseRecordMsg([]byte(`{"callId":"c1","elderId":"e1","elderName":"Margaret Chen","status":"completed","start":100,"end":160}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.CallId != "c1" || m.ElderName != "Margaret Chen" {
		t.Errorf("msg = %+v", m)
	}
	if m.End-m.Start != 60 {
		t.Errorf("duration = %d", m.End-m.Start)
	}
}

func TestParseRecordMsgMalformed(t *testing.T) {
	// 坏消息要走报错重试, 不能panic
	cases := []string{
		``,
		`not json`,
		`{"callId":"c1","start":"yesterday","end":0}`,
		`{"callId":"c1","start":1.5,"end":2}`,
		`{"elderId":"e1","start":1,"end":2}`,
	}
	for _, body := range cases {
		if _, err := parseRecordMsg([]byte(body)); err == nil {
			t.Errorf("parseRecordMsg(%q)应报错", body)
		}
	}
}
