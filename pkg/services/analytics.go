package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/metrics"
	"chatbot/pkg/repository"

	"go.uber.org/zap"
)

const (
	reportTimeLayout = "2006-01-02 15:04:05"
	dateLayout       = "2006-01-02"
)

var reportHeader = []string{"Chat ID", "Thread ID", "User Name", "User Email", "Question", "Answer", "Created At"}

type DailyActivity struct {
	Date             string `json:"date"`
	SignupCount      int64  `json:"signupCount"`
	LoginCount       int64  `json:"loginCount"`
	ChatCreatedCount int64  `json:"chatCreatedCount"`
}

// Report is a rendered CSV attachment.
type Report struct {
	Filename string
	Content  []byte
	Rows     int
}

type ReportRow struct {
	ChatID    uint
	ThreadID  uint
	UserName  string
	UserEmail string
	Question  string
	Answer    string
	CreatedAt time.Time
}

type AnalyticsService struct {
	activity *repository.ActivityRepository
	chats    *repository.ChatRepository
	threads  *repository.ThreadRepository
	users    *repository.UserRepository
	now      func() time.Time
}

func NewAnalyticsService(activity *repository.ActivityRepository, chats *repository.ChatRepository, threads *repository.ThreadRepository, users *repository.UserRepository) *AnalyticsService {
	return &AnalyticsService{activity: activity, chats: chats, threads: threads, users: users, now: time.Now}
}

// LogActivity appends an activity row; description is cut to 255 runes.
func (s *AnalyticsService) LogActivity(ctx context.Context, userID uint, t models.ActivityType, description string) error {
	entry := &models.ActivityLog{UserID: userID, ActivityType: t, CreatedAt: s.now()}
	if description != "" {
		d := truncate(description, 255)
		entry.Description = &d
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		return Internal("failed to log activity", err)
	}
	metrics.ActivityLogged.WithLabelValues(string(t)).Inc()
	return nil
}

// dayBounds returns [start of t's day, start of the next day) in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func (s *AnalyticsService) DailyActivity(ctx context.Context, p models.Principal) (*DailyActivity, error) {
	if !p.IsAdmin() {
		return nil, Forbidden("only administrators can view user activity")
	}
	start, end := dayBounds(s.now())
	out := &DailyActivity{Date: start.Format(dateLayout)}
	for t, dst := range map[models.ActivityType]*int64{
		models.ActivitySignup:      &out.SignupCount,
		models.ActivityLogin:       &out.LoginCount,
		models.ActivityChatCreated: &out.ChatCreatedCount,
	} {
		n, err := s.activity.CountBetween(ctx, t, start, end)
		if err != nil {
			return nil, Internal("failed to count activity", err)
		}
		*dst = n
	}
	return out, nil
}

// DailyReport renders today's chats for an administrator.
func (s *AnalyticsService) DailyReport(ctx context.Context, p models.Principal) (*Report, error) {
	if !p.IsAdmin() {
		return nil, Forbidden("only administrators can generate reports")
	}
	return s.BuildReport(ctx, s.now())
}

// BuildReport renders every chat created on day (in day's location) as CSV.
func (s *AnalyticsService) BuildReport(ctx context.Context, day time.Time) (*Report, error) {
	start, end := dayBounds(day)
	rows, err := s.reportRows(ctx, start, end)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, rows, start.Location()); err != nil {
		return nil, Internal("failed to render report", err)
	}
	logger.L().Info("daily report generated", zap.String("date", start.Format(dateLayout)), zap.Int("rows", len(rows)))
	return &Report{
		Filename: fmt.Sprintf("daily_chat_report_%s.csv", start.Format(dateLayout)),
		Content:  buf.Bytes(),
		Rows:     len(rows),
	}, nil
}

func (s *AnalyticsService) reportRows(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
	chats, err := s.chats.CreatedBetween(ctx, start, end)
	if err != nil {
		return nil, Internal("failed to load chats", err)
	}
	threadOwner := make(map[uint]uint)
	for _, c := range chats {
		if _, ok := threadOwner[c.ThreadID]; ok {
			continue
		}
		t, err := s.threads.FindByID(ctx, c.ThreadID)
		if err != nil {
			return nil, Internal("failed to load thread", err)
		}
		threadOwner[c.ThreadID] = t.UserID
	}
	ids := make([]uint, 0, len(threadOwner))
	for _, uid := range threadOwner {
		ids = append(ids, uid)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, Internal("failed to load users", err)
	}

	rows := make([]ReportRow, 0, len(chats))
	for _, c := range chats {
		u := users[threadOwner[c.ThreadID]]
		rows = append(rows, ReportRow{
			ChatID:    c.ID,
			ThreadID:  c.ThreadID,
			UserName:  u.Name,
			UserEmail: u.Email,
			Question:  c.Question,
			Answer:    c.Answer,
			CreatedAt: c.CreatedAt,
		})
	}
	return rows, nil
}

// WriteReportCSV writes the header and one record per row. Fields containing a
// comma, quote or newline are quoted with inner quotes doubled.
func WriteReportCSV(w io.Writer, rows []ReportRow, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(uint64(r.ChatID), 10),
			strconv.FormatUint(uint64(r.ThreadID), 10),
			r.UserName,
			r.UserEmail,
			r.Question,
			r.Answer,
			r.CreatedAt.In(loc).Format(reportTimeLayout),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
