package telemetry

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	inner := NewTestAPI()
	scoped := NewScopedAPI("portal", inner)

	scoped.ReportBroken("fetcher.fetch", "boom")
	scoped.ReportWarning("authenticator.login")
	scoped.ReportCount("service.forecast", 3)

	reports := inner.Reports()
	require.Len(t, reports, 3)
	require.Equal(t, Report{Kind: "broken", ID: "portal: fetcher.fetch", Params: []any{"boom"}}, reports[0])
	require.Equal(t, "portal: authenticator.login", reports[1].ID)
	require.Equal(t, []any{int64(3)}, reports[2].Params)
	require.True(t, inner.Has("warning", "authenticator.login"))
	require.False(t, inner.Has("broken", "authenticator.login"))
}

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "_wave_key", Value: "rotated-secret"})
		if r.URL.Path == "/voucher" {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4 binary"))
			return
		}
		w.Write([]byte("<html>forecast</html>"))
	}))
	defer server.Close()

	tel := NewTestAPI()
	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, tel, "test", output)

	_, err := client.R().SetHeader("Cookie", "_wave_key=secret").Get("/forecast")
	require.NoError(t, err)
	_, err = client.R().Get("/voucher")
	require.NoError(t, err)

	require.Len(t, output.messages, 2)
	forecast := output.messages["1"]
	require.Contains(t, forecast, "GET")
	require.Contains(t, forecast, "Cookie: <redacted>")
	require.Contains(t, forecast, "Set-Cookie: <redacted>")
	require.NotContains(t, forecast, "secret")
	require.Contains(t, forecast, "<html>forecast</html>")

	voucher := output.messages["2"]
	require.Contains(t, voucher, "<15 bytes of pdf>")
	require.NotContains(t, voucher, "%PDF")

	require.True(t, tel.Has("debug", report_resty_request))
	require.True(t, tel.Has("debug", report_resty_response))
}

func TestInstrumentRestyError(t *testing.T) {
	tel := NewTestAPI()
	client := resty.New()
	InstrumentResty(client, tel, "test", nil)

	_, err := client.R().Get("http://127.0.0.1:1/unreachable")
	require.Error(t, err)
	require.True(t, tel.Has("broken", report_resty_response))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "http")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(dir, "stale.txt"))

	output.Write("7", "message")
	contents, err := os.ReadFile(filepath.Join(dir, "7.txt"))
	require.NoError(t, err)
	require.Equal(t, "message", string(contents))
}
