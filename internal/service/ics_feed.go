package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"teaching-eval/backend/internal/repository"
)

// ── 听课日历订阅 ────────────────────────────────────────────
//
// 将听课教师的待评课表导出为标准 iCalendar (RFC 5545) 订阅源。
// 事件时间取本周内对应星期的 section_time（如 08:00-09:40）；
// 解析不出时间的时段退化为当日全天事件
// ─────────────────────────────────────────────────────────────

const icsFeedLimit = 200

// ICSFeedService 听课日历订阅业务接口
type ICSFeedService interface {
	// PendingFeed 待评课表的 iCalendar 文本
	PendingFeed(ctx context.Context, listenerID int64) (string, error)
}

type icsFeedService struct {
	timetable TimetableService
	logger    *zap.Logger
}

// NewICSFeedService 创建 ICSFeedService 实例
func NewICSFeedService(timetable TimetableService, logger *zap.Logger) ICSFeedService {
	return &icsFeedService{timetable: timetable, logger: logger}
}

func (s *icsFeedService) PendingFeed(ctx context.Context, listenerID int64) (string, error) {
	items, _, err := s.timetable.ListPending(ctx, listenerID, repository.TimetableQuery{Limit: icsFeedLimit})
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//teaching-eval//listen-feed//CN")

	now := time.Now()
	for _, tt := range items {
		uid := fmt.Sprintf("timetable-%d@teaching-eval", tt.ID)
		event := cal.AddEvent(uid)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetSummary(fmt.Sprintf("听课: %s (%s)", tt.CourseName, tt.ClassName))
		if tt.Classroom != "" {
			event.SetLocation(tt.Classroom)
		}
		event.SetDescription(fmt.Sprintf("授课教师: %s; 周次: %s", tt.TeacherName, tt.WeekInfo))

		start, end, ok := weekdaySlot(now, tt.Weekday, tt.SectionTime)
		if ok {
			event.SetStartAt(start)
			event.SetEndAt(end)
		} else {
			day := dateOfWeekday(now, tt.Weekday)
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	return cal.Serialize(), nil
}

// dateOfWeekday 本周（周一起算）内指定星期对应的日期
func dateOfWeekday(now time.Time, weekday int) time.Time {
	isoWeekday := int(now.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7 // 周日
	}
	day := now.AddDate(0, 0, weekday-isoWeekday)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
}

// weekdaySlot 解析 "08:00-09:40" 形式的节次时间
func weekdaySlot(now time.Time, weekday int, sectionTime string) (time.Time, time.Time, bool) {
	parts := strings.SplitN(sectionTime, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	startClock, err1 := time.Parse("15:04", strings.TrimSpace(parts[0]))
	endClock, err2 := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}

	day := dateOfWeekday(now, weekday)
	start := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, now.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, now.Location())
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
