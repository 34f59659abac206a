package domain

import (
	"encoding/json"
	"github.com/xh-polaris/village-senior/biz/application/dto"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"sync"
)

var (
	instance *RedisHelper
	once     sync.Once
)

// RedisHelper 把通话期间的转写暂存到redis队列
// 内存会话注册表才是事实来源, 这里只是持久化镜像的中转站,
// 写失败只记日志不影响主流程
type RedisHelper struct {
	rs *redis.Redis
}

func GetRedisHelper() *RedisHelper {
	c := config.GetConfig()
	once.Do(func() {
		instance = &RedisHelper{
			rs: redis.MustNewRedis(*c.Redis),
		}
	})
	return instance
}

// AddLine 将一条转写追加到队列尾部
func (r *RedisHelper) AddLine(callId string, line *dto.DialogLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return err
	}

	_, err = r.rs.Rpush(callId, string(data))
	return err
}

// Load 获取通话对应的全部转写
func (r *RedisHelper) Load(callId string) ([]*dto.DialogLine, error) {
	// 获取所有元素
	data, err := r.rs.Lrange(callId, 0, -1)
	if err != nil {
		return nil, err
	}

	var lines []*dto.DialogLine
	for _, v := range data {
		var line dto.DialogLine
		if err = json.Unmarshal([]byte(v), &line); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}
	return lines, nil
}

// Remove 删除通话对应的暂存记录
func (r *RedisHelper) Remove(callId string) error {
	_, err := r.rs.Del(callId)
	return err
}
