package intake

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/chat/chattest"
	"github.com/spigell/careermate/internal/extract"
)

const (
	guild      = "g1"
	community  = "c-community"
	volunteers = "c-volunteers"
)

type fakeLLM struct {
	mu      sync.Mutex
	answer  string
	prompts []string
	panic   bool
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string) (string, error) {
	if f.panic {
		panic("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

func (f *fakeLLM) Model() string { return "fake" }

type fixture struct {
	platform *chattest.Platform
	waiter   *chat.Waiter
	llm      *fakeLLM
	engine   *Engine
	member   chat.User
}

func newFixture(t *testing.T, timeout time.Duration, withVolunteers bool) *fixture {
	t.Helper()

	platform := chattest.New()
	platform.AddChannel(guild, community, "college-community")
	if withVolunteers {
		platform.AddChannel(guild, volunteers, "alumni-requests")
	}

	f := &fixture{
		platform: platform,
		waiter:   chat.NewWaiter(),
		llm:      &fakeLLM{},
		member:   chat.User{ID: "u1", Name: "ajay99"},
	}
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	cfg.TempDir = t.TempDir()
	f.engine = New(platform, f.waiter, f.llm, extract.New(nil), cfg, zap.NewNop())
	return f
}

func (f *fixture) run(c *Conversation) <-chan Request {
	done := make(chan Request, 1)
	go func() {
		req, _ := c.Run(context.Background())
		done <- req
	}()
	return done
}

func (f *fixture) say(t *testing.T, channelID string, msg chat.Message) {
	t.Helper()
	chattest.WaitForPending(t, f.waiter, 1)
	msg.ChannelID = channelID
	if msg.Author.ID == "" {
		msg.Author = f.member
	}
	require.Equal(t, 1, f.waiter.Dispatch(msg))
}

func (f *fixture) ignored(t *testing.T, channelID string, msg chat.Message) {
	t.Helper()
	chattest.WaitForPending(t, f.waiter, 1)
	msg.ChannelID = channelID
	if msg.Author.ID == "" {
		msg.Author = f.member
	}
	require.Zero(t, f.waiter.Dispatch(msg))
}

func wait(t *testing.T, done <-chan Request) Request {
	t.Helper()
	select {
	case req := <-done:
		return req
	case <-time.After(3 * time.Second):
		t.Fatal("conversation did not finish")
		return Request{}
	}
}

func countLinks(s string) int {
	return strings.Count(s, "🔗")
}

func TestConversationRelaysVolunteerReply(t *testing.T) {
	f := newFixture(t, time.Second, true)
	done := f.run(f.engine.Begin(f.member, guild, community))

	f.ignored(t, community, chat.Message{Content: "maybe"})
	f.say(t, community, chat.Message{Content: " Internship "})
	f.say(t, community, chat.Message{Content: "  data ANALYST "})
	f.ignored(t, volunteers, chat.Message{Author: chat.User{ID: "bot", Bot: true}, Content: "echo"})
	f.say(t, volunteers, chat.Message{Author: chat.User{ID: "a1", Name: "ravi"}, Content: "DM me, we are hiring"})

	req := wait(t, done)
	assert.Equal(t, OutcomeRelayed, req.Outcome)
	assert.Equal(t, IntentInternship, req.Intent)
	assert.Equal(t, "Data Analyst", req.Role)
	assert.Equal(t, "ravi", req.Volunteer)

	broadcast := f.platform.Messages(volunteers)
	require.Len(t, broadcast, 1)
	assert.Contains(t, broadcast[0], "ajay99 is looking for a **internship** opportunity as a **Data Analyst**")

	msgs := f.platform.Messages(community)
	last := msgs[len(msgs)-1]
	assert.Contains(t, last, "> DM me, we are hiring")
	for _, m := range msgs {
		assert.Zero(t, countLinks(m), "relay must not include fallback links")
	}
}

func TestConversationIntentTimeout(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond, true)

	req, err := f.engine.Begin(f.member, guild, community).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoIntent, req.Outcome)
	msgs := f.platform.Messages(community)
	require.Len(t, msgs, 2, "prompt and a single terminal notice")
	assert.Contains(t, msgs[1], "you didn’t reply")
	assert.Empty(t, f.platform.Messages(volunteers), "nothing is broadcast")
}

func TestConversationVolunteerTimeoutSendsFourLinks(t *testing.T) {
	f := newFixture(t, 200*time.Millisecond, true)
	done := f.run(f.engine.BeginWithIntent(f.member, guild, community, IntentJob))

	f.say(t, community, chat.Message{Content: "web developer"})

	req := wait(t, done)
	assert.Equal(t, OutcomeFallback, req.Outcome)

	msgs := f.platform.Messages(community)
	last := msgs[len(msgs)-1]
	assert.Equal(t, 4, countLinks(last))
	assert.Contains(t, last, "https://www.linkedin.com/jobs/search/?keywords=Web+Developer")
	assert.Contains(t, last, "https://internshala.com/internships/Web+Developer-internship")
	require.Len(t, f.platform.Messages(volunteers), 1)
}

func TestConversationWithoutVolunteerChannel(t *testing.T) {
	f := newFixture(t, time.Second, false)
	done := f.run(f.engine.BeginWithIntent(f.member, guild, community, IntentJob))

	f.say(t, community, chat.Message{Content: "ai engineer"})

	req := wait(t, done)
	assert.Equal(t, OutcomeFallback, req.Outcome)
	assert.Equal(t, 0, f.waiter.Pending())

	msgs := f.platform.Messages(community)
	assert.Equal(t, 4, countLinks(msgs[len(msgs)-1]))
}

func TestConversationRoleFromResume(t *testing.T) {
	f := newFixture(t, 200*time.Millisecond, true)
	f.llm.answer = "**Backend Developer**\nBecause of Go experience."
	f.platform.AddFile("https://cdn/cv.txt", []byte("Ajay Kumar\nGo, PostgreSQL, Kubernetes"))

	done := f.run(f.engine.BeginWithIntent(f.member, guild, community, IntentJob))
	f.say(t, community, chat.Message{Attachments: []chat.Attachment{{Filename: "cv.txt", URL: "https://cdn/cv.txt"}}})

	req := wait(t, done)
	assert.Equal(t, "Backend Developer", req.Role)
	require.Len(t, f.llm.prompts, 1)
	assert.Contains(t, f.llm.prompts[0], "Go, PostgreSQL, Kubernetes")
	assert.Contains(t, f.llm.prompts[0], "single most suitable job role")
}

func TestConversationEmptyResume(t *testing.T) {
	f := newFixture(t, time.Second, true)
	f.platform.AddFile("https://cdn/cv.txt", []byte("   \n "))

	done := f.run(f.engine.BeginWithIntent(f.member, guild, community, IntentJob))
	f.say(t, community, chat.Message{Attachments: []chat.Attachment{{Filename: "cv.txt", URL: "https://cdn/cv.txt"}}})

	req := wait(t, done)
	assert.Equal(t, OutcomeEmptyResume, req.Outcome)
	assert.Empty(t, f.llm.prompts)
	assert.Empty(t, f.platform.Messages(volunteers))

	msgs := f.platform.Messages(community)
	assert.Equal(t, emptyResumeNotice, msgs[len(msgs)-1])
}

func TestConversationUnsupportedAttachment(t *testing.T) {
	f := newFixture(t, time.Second, true)

	done := f.run(f.engine.BeginWithIntent(f.member, guild, community, IntentJob))
	f.say(t, community, chat.Message{Attachments: []chat.Attachment{{Filename: "cv.odt", URL: "https://cdn/cv.odt"}}})

	req := wait(t, done)
	assert.Equal(t, OutcomeEmptyResume, req.Outcome)
	msgs := f.platform.Messages(community)
	assert.Equal(t, unsupportedNotice, msgs[len(msgs)-1])
}

func TestEngineRunRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, time.Second, true)
	f.llm.panic = true
	f.platform.AddFile("https://cdn/cv.txt", []byte("Go developer"))
	f.engine.logger = zap.New(core)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		f.engine.Run(context.Background(), f.engine.BeginWithIntent(f.member, guild, community, IntentJob))
	}()
	f.say(t, community, chat.Message{Attachments: []chat.Attachment{{Filename: "cv.txt", URL: "https://cdn/cv.txt"}}})

	select {
	case <-finished:
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return")
	}
	assert.Equal(t, 1, logs.FilterMessage("career intake panicked").Len())
}

func TestHandleApply(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond, true)

	assert.False(t, f.engine.HandleApply(context.Background(), chat.Message{
		Author: f.member, ChannelName: "general", Content: "I want to apply for a job",
	}))
	assert.False(t, f.engine.HandleApply(context.Background(), chat.Message{
		Author: f.member, ChannelName: "college-community", Content: "looking for a job",
	}))
	assert.True(t, f.engine.HandleApply(context.Background(), chat.Message{
		Author: f.member, GuildID: guild, ChannelID: community, ChannelName: "college-community", Content: "I want to APPLY for an internship",
	}))
}

func TestApplyIntent(t *testing.T) {
	tests := map[string]string{
		"apply for internship":          IntentInternship,
		"I'd like to Apply for a JOB":   IntentJob,
		"apply: internship or job?":     IntentInternship,
		"looking for an internship":     "",
		"apply now":                     "",
	}
	for input, want := range tests {
		assert.Equal(t, want, ApplyIntent(input), input)
	}
}

func TestRoleHelpers(t *testing.T) {
	assert.Equal(t, "Web Developer", TitleRole("  web DEVELOPER "))
	assert.Equal(t, "", TitleRole("   "))
	assert.Equal(t, "Data Scientist", FirstLine("  **Data Scientist**\nexplanation"))
	assert.Equal(t, "ML Engineer", FirstLine("\"ML Engineer\""))

	links := FallbackLinks("Data Analyst")
	require.Len(t, links, 4)
	assert.Equal(t, "https://in.indeed.com/jobs?q=Data+Analyst", links[2].URL)
	assert.Equal(t, "https://www.letsintern.com/Data+Analyst-internships", links[3].URL)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "await_intent", AwaitIntent.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "state(9)", State(9).String())
}
