package call

import "time"
import "go.mongodb.org/mongo-driver/bson/primitive"

// CallRecord 落库的通话记录, 会话结束后由消费者写入
type CallRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CallId          string             `bson:"call_id" json:"call_id"`
	ElderId         string             `bson:"elder_id" json:"elder_id"`
	ElderName       string             `bson:"elder_name" json:"elder_name"`
	Status          string             `bson:"status" json:"status"`
	Dialogs         []*Dialog          `bson:"dialogs" json:"dialogs"`
	Report          *Report            `bson:"report" json:"report"`
	StartTime       time.Time          `bson:"start_time" json:"start_time"`
	EndTime         time.Time          `bson:"end_time" json:"end_time"`
	DurationSeconds int64              `bson:"duration_seconds" json:"duration_seconds"`
}

type Dialog struct {
	Speaker string `bson:"speaker" json:"speaker"`
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Text    string `bson:"text" json:"text"`
}

// Report 通话总结
type Report struct {
	Overview   string   `bson:"overview" json:"overview"`
	Keywords   []string `bson:"keywords" json:"keywords"`
	Grade      string   `bson:"grade" json:"grade"`
	Suggestion []string `bson:"suggestion" json:"suggestion"`
}
