package call

import (
	"github.com/xh-polaris/village-senior/biz/adaptor/cmd"
	"github.com/xh-polaris/village-senior/biz/infrastructure/config"
	"github.com/xh-polaris/village-senior/biz/infrastructure/consts"
	"github.com/xh-polaris/village-senior/biz/infrastructure/util"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/context"
	"sync"
)

const (
	prefixCallCacheKey = "cache:call"
	CollectionName     = "call"
)

var Mapper *MongoMapper
var once sync.Once

type IMongoMapper interface {
	Insert(ctx context.Context, record *CallRecord) error
	FindMany(ctx context.Context, p *cmd.Paging, elderId string) (data []*CallRecord, total int64, err error)
}

type MongoMapper struct {
	conn *monc.Model
}

func NewMongoMapper(config *config.Config) *MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, CollectionName, config.Cache)
	return &MongoMapper{conn: conn}
}

func GetMongoMapper() *MongoMapper {
	once.Do(func() {
		c := config.GetConfig()
		conn := monc.MustNewModel(c.Mongo.URL, c.Mongo.DB, CollectionName, c.Cache)
		Mapper = &MongoMapper{
			conn: conn,
		}
	})
	return Mapper
}

func (m *MongoMapper) Insert(ctx context.Context, record *CallRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	_, err := m.conn.InsertOneNoCache(ctx, record)
	return err
}

func (m *MongoMapper) FindMany(ctx context.Context, p *cmd.Paging, elderId string) (data []*CallRecord, total int64, err error) {
	skip, limit := util.ParsePaging(p)
	filter := bson.M{}
	if elderId != "" {
		filter["elder_id"] = elderId
	}
	data = make([]*CallRecord, 0, limit)
	err = m.conn.Find(ctx, &data,
		filter, &options.FindOptions{
			Skip:  &skip,
			Limit: &limit,
			Sort:  bson.M{consts.StartTime: -1},
		})
	if err != nil {
		return nil, 0, err
	}
	total, err = m.conn.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return data, total, nil
}
