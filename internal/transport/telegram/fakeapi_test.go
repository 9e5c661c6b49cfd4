package telegram

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	testToken       = "123456:TEST-token"
	testBotID       = int64(99)
	testBotUsername = "moderation_bot"
)

type apiCall struct {
	method string
	form   url.Values
}

type apiReply struct {
	status int
	body   string
}

// fakeAPI imitates the Bot API: every method answers with a canned reply,
// falling back to {"ok":true,"result":true}.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []apiCall
	replies map[string]func(form url.Values) apiReply
}

func newFakeAPI(t *testing.T) (*fakeAPI, *bot.Bot) {
	t.Helper()
	api := &fakeAPI{replies: map[string]func(url.Values) apiReply{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		form := url.Values{}
		if err := r.ParseMultipartForm(1 << 20); err == nil && r.MultipartForm != nil {
			form = url.Values(r.MultipartForm.Value)
		} else if err := r.ParseForm(); err == nil {
			form = r.Form
		}

		api.mu.Lock()
		api.calls = append(api.calls, apiCall{method: method, form: form})
		reply, ok := api.replies[method]
		api.mu.Unlock()

		res := apiReply{status: http.StatusOK, body: `{"ok":true,"result":true}`}
		if ok {
			res = reply(form)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.status)
		w.Write([]byte(res.body))
	}))
	t.Cleanup(srv.Close)

	b, err := bot.New(testToken, bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return api, b
}

func (a *fakeAPI) on(method string, reply func(form url.Values) apiReply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies[method] = reply
}

func (a *fakeAPI) always(method string, status int, body string) {
	a.on(method, func(url.Values) apiReply { return apiReply{status: status, body: body} })
}

func (a *fakeAPI) callsTo(method string) []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return lo.Filter(a.calls, func(c apiCall, _ int) bool { return c.method == method })
}

func (a *fakeAPI) sentTexts() []string {
	return lo.Map(a.callsTo("sendMessage"), func(c apiCall, _ int) string { return c.form.Get("text") })
}

const sentMessage = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`

const forbidden = `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`

// memberReply answers getChatMember with a status per user id.
func memberReply(statuses map[string]string) func(url.Values) apiReply {
	return func(form url.Values) apiReply {
		body, ok := statuses[form.Get("user_id")]
		if !ok {
			body = `{"status":"left","user":{"id":1,"is_bot":false,"first_name":"x"}}`
		}
		return apiReply{status: http.StatusOK, body: `{"ok":true,"result":` + body + `}`}
	}
}
