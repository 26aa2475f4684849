package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyActivity(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	ctx := context.Background()
	a := env.signup(t, "alice")
	root := env.admin(t)

	_, err := env.users.Authenticate(ctx, LoginRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	_, err = env.chats.Create(ctx, a, ChatRequest{Question: "hi"})
	require.NoError(t, err)

	_, err = env.analytics.DailyActivity(ctx, a)
	requireKind(t, err, KindForbidden)

	got, err := env.analytics.DailyActivity(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), got.Date)
	assert.Equal(t, int64(1), got.SignupCount)
	assert.Equal(t, int64(1), got.LoginCount)
	assert.Equal(t, int64(1), got.ChatCreatedCount)
}

func TestDailyActivityExcludesOtherDays(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	ctx := context.Background()
	root := env.admin(t)

	env.analytics.now = func() time.Time { return time.Now().AddDate(0, 0, -2) }
	require.NoError(t, env.analytics.LogActivity(ctx, root.ID, models.ActivityLogin, ""))
	env.analytics.now = time.Now

	got, err := env.analytics.DailyActivity(ctx, root)
	require.NoError(t, err)
	assert.Zero(t, got.LoginCount)
}

func TestDailyReportCSV(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	ctx := context.Background()
	a := env.signup(t, "alice")
	root := env.admin(t)

	tricky := "Hello, \"world\"\nsecond line"
	chat, err := env.chats.Create(ctx, a, ChatRequest{Question: tricky})
	require.NoError(t, err)

	_, err = env.analytics.DailyReport(ctx, a)
	requireKind(t, err, KindForbidden)

	report, err := env.analytics.DailyReport(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, "daily_chat_report_"+time.Now().Format("2006-01-02")+".csv", report.Filename)
	assert.Equal(t, 1, report.Rows)

	records, err := csv.NewReader(bytes.NewReader(report.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, reportHeader, records[0])

	row := records[1]
	assert.Equal(t, strconv.FormatUint(uint64(chat.ID), 10), row[0])
	assert.Equal(t, strconv.FormatUint(uint64(chat.ThreadID), 10), row[1])
	assert.Equal(t, "alice", row[2])
	assert.Equal(t, "alice@example.com", row[3])
	assert.Equal(t, tricky, row[4])
	assert.Equal(t, chat.Answer, row[5])
	assert.Equal(t, chat.CreatedAt.Local().Format(reportTimeLayout), row[6])
}

func TestWriteReportCSVQuoting(t *testing.T) {
	var buf bytes.Buffer
	rows := []ReportRow{{ChatID: 1, ThreadID: 2, UserName: "a", UserEmail: "a@x", Question: `say "hi", ok`, Answer: "plain", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}}
	require.NoError(t, WriteReportCSV(&buf, rows, time.UTC))
	assert.Equal(t,
		"Chat ID,Thread ID,User Name,User Email,Question,Answer,Created At\n"+
			"1,2,a,a@x,\"say \"\"hi\"\", ok\",plain,2026-01-02 03:04:05\n",
		buf.String())
}

func TestBuildReportEmptyDay(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	report, err := env.analytics.BuildReport(context.Background(), time.Date(2020, 5, 1, 12, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, "daily_chat_report_2020-05-01.csv", report.Filename)
	assert.Zero(t, report.Rows)
}
