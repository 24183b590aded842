package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// OrgService 学院/教研室组织结构业务接口
type OrgService interface {
	CreateCollege(ctx context.Context, req *dto.CreateCollegeRequest) (*dto.CollegeResponse, error)
	ListColleges(ctx context.Context) ([]dto.CollegeResponse, error)
	UpdateCollege(ctx context.Context, id int64, req *dto.UpdateCollegeRequest) (*dto.CollegeResponse, error)
	DeleteCollege(ctx context.Context, id int64) error

	CreateResearchRoom(ctx context.Context, req *dto.CreateResearchRoomRequest) (*dto.ResearchRoomResponse, error)
	ListResearchRooms(ctx context.Context, collegeID int64) ([]dto.ResearchRoomResponse, error)
	UpdateResearchRoom(ctx context.Context, id int64, req *dto.UpdateResearchRoomRequest) (*dto.ResearchRoomResponse, error)
	DeleteResearchRoom(ctx context.Context, id int64) error
}

type orgService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOrgService 创建 OrgService 实例
func NewOrgService(repo *repository.Repository, logger *zap.Logger) OrgService {
	return &orgService{repo: repo, logger: logger}
}

// ────────────────────── 学院 ──────────────────────

func (s *orgService) CreateCollege(ctx context.Context, req *dto.CreateCollegeRequest) (*dto.CollegeResponse, error) {
	if _, err := s.repo.College.GetByCode(ctx, req.CollegeCode); err == nil {
		return nil, apperrors.Conflict("学院编码已存在")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unavailable("查询学院失败", err)
	}

	college := &model.College{
		CollegeCode: req.CollegeCode,
		CollegeName: req.CollegeName,
	}
	if err := s.repo.College.Create(ctx, college); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("学院编码已存在")
		}
		return nil, apperrors.Unavailable("创建学院失败", err)
	}
	return toCollegeResponse(college), nil
}

func (s *orgService) ListColleges(ctx context.Context) ([]dto.CollegeResponse, error) {
	colleges, err := s.repo.College.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("查询学院列表失败", err)
	}
	result := make([]dto.CollegeResponse, 0, len(colleges))
	for i := range colleges {
		result = append(result, *toCollegeResponse(&colleges[i]))
	}
	return result, nil
}

func (s *orgService) UpdateCollege(ctx context.Context, id int64, req *dto.UpdateCollegeRequest) (*dto.CollegeResponse, error) {
	college, err := s.repo.College.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("学院不存在")
		}
		return nil, apperrors.Unavailable("查询学院失败", err)
	}
	if req.CollegeName != nil {
		college.CollegeName = *req.CollegeName
	}
	if err := s.repo.College.Update(ctx, college); err != nil {
		return nil, apperrors.Unavailable("更新学院失败", err)
	}
	return toCollegeResponse(college), nil
}

func (s *orgService) DeleteCollege(ctx context.Context, id int64) error {
	if _, err := s.repo.College.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("学院不存在")
		}
		return apperrors.Unavailable("查询学院失败", err)
	}
	if err := s.repo.College.SoftDelete(ctx, id); err != nil {
		return apperrors.Unavailable("删除学院失败", err)
	}
	return nil
}

// ────────────────────── 教研室 ──────────────────────

func (s *orgService) CreateResearchRoom(ctx context.Context, req *dto.CreateResearchRoomRequest) (*dto.ResearchRoomResponse, error) {
	if _, err := s.repo.College.GetByID(ctx, req.CollegeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("学院不存在")
		}
		return nil, apperrors.Unavailable("查询学院失败", err)
	}
	if _, err := s.repo.ResearchRoom.GetByCode(ctx, req.RoomCode); err == nil {
		return nil, apperrors.Conflict("教研室编码已存在")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unavailable("查询教研室失败", err)
	}

	room := &model.ResearchRoom{
		RoomCode:  req.RoomCode,
		RoomName:  req.RoomName,
		CollegeID: req.CollegeID,
	}
	if err := s.repo.ResearchRoom.Create(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("教研室编码已存在")
		}
		return nil, apperrors.Unavailable("创建教研室失败", err)
	}
	return toResearchRoomResponse(room), nil
}

func (s *orgService) ListResearchRooms(ctx context.Context, collegeID int64) ([]dto.ResearchRoomResponse, error) {
	rooms, err := s.repo.ResearchRoom.ListByCollege(ctx, collegeID)
	if err != nil {
		return nil, apperrors.Unavailable("查询教研室列表失败", err)
	}
	result := make([]dto.ResearchRoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toResearchRoomResponse(&rooms[i]))
	}
	return result, nil
}

func (s *orgService) UpdateResearchRoom(ctx context.Context, id int64, req *dto.UpdateResearchRoomRequest) (*dto.ResearchRoomResponse, error) {
	room, err := s.repo.ResearchRoom.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("教研室不存在")
		}
		return nil, apperrors.Unavailable("查询教研室失败", err)
	}
	if req.RoomName != nil {
		room.RoomName = *req.RoomName
	}
	if err := s.repo.ResearchRoom.Update(ctx, room); err != nil {
		return nil, apperrors.Unavailable("更新教研室失败", err)
	}
	return toResearchRoomResponse(room), nil
}

func (s *orgService) DeleteResearchRoom(ctx context.Context, id int64) error {
	if _, err := s.repo.ResearchRoom.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("教研室不存在")
		}
		return apperrors.Unavailable("查询教研室失败", err)
	}
	if err := s.repo.ResearchRoom.SoftDelete(ctx, id); err != nil {
		return apperrors.Unavailable("删除教研室失败", err)
	}
	return nil
}

// ────────────────────── 转换 ──────────────────────

func toCollegeResponse(c *model.College) *dto.CollegeResponse {
	return &dto.CollegeResponse{
		ID:          c.ID,
		CollegeCode: c.CollegeCode,
		CollegeName: c.CollegeName,
	}
}

func toResearchRoomResponse(r *model.ResearchRoom) *dto.ResearchRoomResponse {
	resp := &dto.ResearchRoomResponse{
		ID:        r.ID,
		RoomCode:  r.RoomCode,
		RoomName:  r.RoomName,
		CollegeID: r.CollegeID,
	}
	if r.College != nil {
		resp.CollegeName = r.College.CollegeName
	}
	return resp
}
