package village

import "strings"

// rolePriority 动作类型到偏好角色的有序映射
var rolePriority = map[string][]string{
	"call_family":    {"family"},
	"call_medical":   {"medical", "volunteer"},
	"call_neighbor":  {"neighbor", "friend"},
	"call_volunteer": {"volunteer", "neighbor"},
}

// Resolve 从名册中为一个建议动作选出响应者
// 纯函数: 相同输入永远返回同一位成员
// 依次扫描偏好角色, 取第一位角色匹配(大小写不敏感的子串)且可用的成员;
// 偏好角色都没有可用成员时回落到任意可用成员; 全员不可用返回nil
func Resolve(roster []*VillageMember, actionType, roleHint string) *VillageMember {
	preferred := rolePriority[actionType]
	if len(preferred) == 0 && roleHint != "" {
		preferred = []string{roleHint}
	}

	for _, role := range preferred {
		for _, m := range roster {
			if m.Available && strings.Contains(strings.ToLower(m.Role), strings.ToLower(role)) {
				return m
			}
		}
	}

	// 兜底: 任意可用成员
	for _, m := range roster {
		if m.Available {
			return m
		}
	}
	return nil
}
