package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-eval/backend/internal/dto"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/apperrors"
)

// ── Excel 课表导入 ──────────────────────────────────────────
//
// 格式：首个 Sheet，第 1 行表头，列序固定：
//   学年 | 学期 | 教师工号 | 学院编码 | 班级 | 课程名称 | 课程类型 |
//   星期 | 节次 | 上课时间 | 周次 | 教室
// 每行走一次 upsert：重复导入同一文件不产生重复课表。
// 单行失败不中断整体，逐行错误收集在响应里
// ─────────────────────────────────────────────────────────────

const importMinColumns = 11

// TimetableImportService Excel 批量导入业务接口
type TimetableImportService interface {
	Import(ctx context.Context, r io.Reader) (*dto.ImportTimetableResponse, error)
}

type timetableImportService struct {
	repo      *repository.Repository
	timetable TimetableService
	logger    *zap.Logger
}

// NewTimetableImportService 创建 TimetableImportService 实例
func NewTimetableImportService(repo *repository.Repository, timetable TimetableService, logger *zap.Logger) TimetableImportService {
	return &timetableImportService{repo: repo, timetable: timetable, logger: logger}
}

func (s *timetableImportService) Import(ctx context.Context, r io.Reader) (*dto.ImportTimetableResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.InvalidInput("无法解析 Excel 文件")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.InvalidInput("Excel 文件中没有工作表")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.InvalidInput("读取工作表失败")
	}
	if len(rows) <= 1 {
		return nil, apperrors.InvalidInput("工作表中没有数据行")
	}

	resp := &dto.ImportTimetableResponse{}
	for i, row := range rows[1:] { // 跳过表头
		rowNo := i + 2
		req, err := s.parseRow(ctx, row)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: %v", rowNo, err))
			continue
		}
		if _, err := s.timetable.Upsert(ctx, req); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行: %v", rowNo, err))
			continue
		}
		resp.Imported++
	}

	s.logger.Info("课表导入完成",
		zap.Int("imported", resp.Imported),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

func (s *timetableImportService) parseRow(ctx context.Context, row []string) (*dto.UpsertTimetableRequest, error) {
	if len(row) < importMinColumns {
		return nil, fmt.Errorf("列数不足，至少需要 %d 列", importMinColumns)
	}
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	semester, err := strconv.Atoi(cell(1))
	if err != nil || (semester != 1 && semester != 2) {
		return nil, fmt.Errorf("学期无效: %q", cell(1))
	}
	weekday, err := strconv.Atoi(cell(7))
	if err != nil || weekday < 1 || weekday > 7 {
		return nil, fmt.Errorf("星期无效: %q", cell(7))
	}
	period, err := strconv.Atoi(cell(8))
	if err != nil || period < 1 {
		return nil, fmt.Errorf("节次无效: %q", cell(8))
	}

	teacher, err := s.repo.User.GetByUserNo(ctx, cell(2))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("教师工号不存在: %q", cell(2))
		}
		return nil, err
	}
	college, err := s.repo.College.GetByCode(ctx, cell(3))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("学院编码不存在: %q", cell(3))
		}
		return nil, err
	}

	req := &dto.UpsertTimetableRequest{
		AcademicYear: cell(0),
		Semester:     semester,
		TeacherID:    teacher.ID,
		CollegeID:    college.ID,
		ClassName:    cell(4),
		CourseName:   cell(5),
		CourseType:   cell(6),
		Weekday:      weekday,
		Period:       period,
		SectionTime:  cell(9),
		WeekInfo:     cell(10),
		Classroom:    cell(11),
	}
	if req.AcademicYear == "" || req.ClassName == "" || req.CourseName == "" || req.SectionTime == "" || req.WeekInfo == "" {
		return nil, fmt.Errorf("必填列存在空值")
	}
	return req, nil
}
