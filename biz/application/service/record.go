package service

import (
	"context"

	"github.com/google/wire"
	"github.com/jinzhu/copier"
	"github.com/xh-polaris/village-senior/biz/adaptor/cmd"
	"github.com/xh-polaris/village-senior/biz/infrastructure/mapper/call"
)

type ICallRecordService interface {
	ListCallRecord(ctx context.Context, req *cmd.ListCallRecordReq) (*cmd.ListCallRecordResp, error)
}

// CallRecordService 历史通话记录的查询
// 只读落库镜像, 活跃会话走CallService
type CallRecordService struct {
	CallMapper *call.MongoMapper
}

var CallRecordServiceSet = wire.NewSet(
	wire.Struct(new(CallRecordService), "*"),
	wire.Bind(new(ICallRecordService), new(*CallRecordService)),
)

func (s *CallRecordService) ListCallRecord(ctx context.Context, req *cmd.ListCallRecordReq) (*cmd.ListCallRecordResp, error) {
	data, total, err := s.CallMapper.FindMany(ctx, &req.Paging, req.ElderId)
	if err != nil {
		return nil, err
	}

	records := make([]*cmd.CallRecord, 0, len(data))
	for _, r := range data {
		dia := make([]*cmd.Dialog, 0, len(r.Dialogs))
		for _, d := range r.Dialogs {
			if d == nil {
				continue
			}
			dia = append(dia, &cmd.Dialog{
				Speaker: d.Speaker,
				Name:    d.Name,
				Text:    d.Text,
			})
		}
		cr := &cmd.CallRecord{
			ID:              r.ID.Hex(),
			CallId:          r.CallId,
			ElderId:         r.ElderId,
			ElderName:       r.ElderName,
			Status:          r.Status,
			Dialogs:         dia,
			StartTime:       r.StartTime.Unix(),
			EndTime:         r.EndTime.Unix(),
			DurationSeconds: r.DurationSeconds,
		}
		if r.Report != nil {
			cr.Report = &cmd.Report{}
			if err := copier.Copy(cr.Report, r.Report); err != nil {
				return nil, err
			}
		}

		records = append(records, cr)
	}
	return &cmd.ListCallRecordResp{
		Code:    0,
		Msg:     "success",
		Records: records,
		Total:   total,
	}, nil
}
