package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

func TestGetAppliesPagingAfterDataParameters(t *testing.T) {
	var rawQuery string
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			jsonResponse(200, `{"results":[{"_id":"1","name":"marko"}],"totalSize":1,"queryTime":1.5}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices", "-f", "key=name", "-f", "value=marko",
		"--offset-start", "0", "--offset-end", "10", "--return-keys", "name")
	if res.err != nil {
		t.Fatalf("get failed: %v\n%s", res.err, res.stderr)
	}

	want := "key=name&value=marko&rexster.offset.start=0&rexster.offset.end=10&rexster.returnKeys=name"
	if rawQuery != want {
		t.Errorf("query = %q, want %q", rawQuery, want)
	}
	if res.stdout != `{"_id":"1","name":"marko"}`+"\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "1 of 1 result(s) in 1.50ms") {
		t.Errorf("stderr missing summary: %q", res.stderr)
	}
}

func TestGetOffsetStartOmittedUnlessSet(t *testing.T) {
	var rawQuery string
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			jsonResponse(200, `{"results":[{"_id":"1"}]}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices", "--end", "5")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if rawQuery != "rexster.offset.end=5" {
		t.Errorf("query = %q, want rexster.offset.end=5", rawQuery)
	}
}

func TestGetWithoutPathShowsGraph(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph", jsonResponse(200, `{"name":"tinkergraph","graph":"tinkergraph[vertices:6 edges:6]","queryTime":0.3}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "tinkergraph[vertices:6 edges:6]") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGetJSONQuery(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices", jsonResponse(200, `{"results":[{"_id":"1","name":"marko"},{"_id":"2","name":"vadas"}]}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices", "-q", "[.[].name]", "--compact-json")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != `["marko","vadas"]` {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGetAcceptHeaderUsesMakeRequest(t *testing.T) {
	var accept, contentType string
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices/1", func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			contentType = r.Header.Get("Content-Type")
			jsonResponse(200, `{"results":{"_id":"1"}}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices/1", "--accept", rexster.ContentTypeRexsterTyped)
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if accept != rexster.ContentTypeRexsterTyped {
		t.Errorf("Accept = %q", accept)
	}
	if contentType != rexster.ContentTypeFormURLEncoded {
		t.Errorf("Content-Type = %q", contentType)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	var body map[string]any
	var contentType string
	handler := newRouteHandler().
		On("POST", "/graphs/tinkergraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&body)
			jsonResponse(200, `{"results":{"_id":"7","name":"marko","age":29},"queryTime":2}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "post", "vertices", "-f", "name=marko", "-F", "age=29", "-o", "json", "-q", ".results._id")
	if res.err != nil {
		t.Fatalf("post failed: %v\n%s", res.err, res.stderr)
	}
	if contentType != rexster.ContentTypeJSON {
		t.Errorf("Content-Type = %q", contentType)
	}
	if body["name"] != "marko" || body["age"] != float64(29) {
		t.Errorf("body = %#v", body)
	}
	if strings.TrimSpace(res.stdout) != `"7"` {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestPostContentTypeFlag(t *testing.T) {
	var contentType string
	handler := newRouteHandler().
		On("POST", "/graphs/tinkergraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			jsonResponse(200, `{"results":{"_id":"8"}}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "post", "vertices", "-d", `{"name":"lop"}`, "--content-type", rexster.ContentTypeRexsterTyped)
	if res.err != nil {
		t.Fatalf("post failed: %v", res.err)
	}
	if contentType != rexster.ContentTypeRexsterTyped {
		t.Errorf("Content-Type = %q", contentType)
	}
}

func TestPutReadsStdin(t *testing.T) {
	var body []byte
	handler := newRouteHandler().
		On("PUT", "/graphs/tinkergraph/vertices/2", func(w http.ResponseWriter, r *http.Request) {
			body, _ = io.ReadAll(r.Body)
			jsonResponse(200, `{"results":{"_id":"2","name":"vadas"}}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLIWithInput(t, `{"name":"vadas","age":null}`, "put", "vertices/2", "-i", "-")
	if res.err != nil {
		t.Fatalf("put failed: %v\n%s", res.err, res.stderr)
	}
	if string(body) != `{"name":"vadas"}` {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(res.stdout, "vadas") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestDeleteEncodesDataInQuery(t *testing.T) {
	var rawQuery string
	contentType := "unset"
	handler := newRouteHandler().
		On("DELETE", "/graphs/tinkergraph/vertices/1", func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			contentType = r.Header.Get("Content-Type")
			jsonResponse(200, `{"queryTime":1.2}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "delete", "vertices/1", "-f", "name=", "--return-keys", "name")
	if res.err != nil {
		t.Fatalf("delete failed: %v", res.err)
	}
	if rawQuery != "name=" {
		t.Errorf("query = %q, want name= (no paging on DELETE)", rawQuery)
	}
	if contentType != "" {
		t.Errorf("Content-Type = %q, want none", contentType)
	}
	if !strings.Contains(res.stdout, "queryTime") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRequestFailureExitCode(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices/99", jsonResponse(404, `{"message":"Vertex with [99] cannot be found."}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices/99")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if got := ExitCode(res.err); got != exitApplication {
		t.Errorf("ExitCode = %d, want %d", got, exitApplication)
	}
	if !strings.Contains(res.stderr, "Request failed (HTTP 404): Vertex with [99] cannot be found.") {
		t.Errorf("stderr = %q", res.stderr)
	}
	if !rexster.IsRequestFailed(res.err) {
		t.Errorf("expected RequestFailedError in chain, got %T", res.err)
	}
}

func TestRequestFailureJSONError(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices/99", jsonResponse(404, `{"message":"Vertex with [99] cannot be found."}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices/99", "-o", "json")
	if res.err == nil {
		t.Fatal("expected error")
	}
	var payload map[string]errorBody
	if err := json.Unmarshal([]byte(res.stderr), &payload); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, res.stderr)
	}
	if payload["error"].Type != "application_failure" || payload["error"].StatusCode != 404 {
		t.Errorf("error payload = %+v", payload["error"])
	}
}

func TestEmptyResultIsFailure(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices", jsonResponse(200, `{}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices")
	if got := ExitCode(res.err); got != exitApplication {
		t.Fatalf("ExitCode = %d, want %d (err %v)", got, exitApplication, res.err)
	}
	if !strings.Contains(res.stderr, "empty response") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestRequestCommandPrintsOutcome(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices/99", jsonResponse(404, `{"message":"Vertex with [99] cannot be found."}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "request", "get", "vertices/99", "-o", "json")
	if res.err != nil {
		t.Fatalf("request failed: %v", res.err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
	}
	if out["outcome"] != "application_failure" {
		t.Errorf("outcome = %v", out["outcome"])
	}
	if out["status"] != float64(404) {
		t.Errorf("status = %v", out["status"])
	}
	if out["method"] != "GET" {
		t.Errorf("method = %v", out["method"])
	}
	if !strings.HasSuffix(out["url"].(string), "/graphs/tinkergraph/vertices/99") {
		t.Errorf("url = %v", out["url"])
	}
}

func TestTransportErrorExitCode(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	clearEndpointEnv(t)
	t.Setenv(config.EnvBaseURL, url)
	t.Setenv(config.EnvGraph, "tinkergraph")

	res := runCLI(t, "get", "vertices")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if got := ExitCode(res.err); got != exitTransport {
		t.Errorf("ExitCode = %d, want %d", got, exitTransport)
	}
	if !strings.Contains(res.stderr, "Could not complete GET") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestNotConfigured(t *testing.T) {
	clearEndpointEnv(t)

	res := runCLI(t, "get", "vertices")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if got := ExitCode(res.err); got != exitUsage {
		t.Errorf("ExitCode = %d, want %d", got, exitUsage)
	}
	if !strings.Contains(res.stderr, "No Rexster endpoint configured") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestBodyAndInputConflict(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	res := runCLI(t, "post", "vertices", "-d", `{"a":1}`, "-i", "vertex.json")
	if res.err == nil || !strings.Contains(res.err.Error(), "cannot use both --body and --input") {
		t.Fatalf("err = %v", res.err)
	}
}

func TestDryRunDoesNotSend(t *testing.T) {
	var hits int
	handler := newRouteHandler().
		On("DELETE", "/graphs/tinkergraph/vertices/1", func(w http.ResponseWriter, r *http.Request) {
			hits++
			jsonResponse(200, `{"queryTime":1}`)(w, r)
		}).
		On("POST", "/graphs/tinkergraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			hits++
			jsonResponse(200, `{"results":{"_id":"1"}}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "delete", "vertices/1", "--dry-run")
	if res.err != nil {
		t.Fatalf("delete failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "[DRY-RUN] Would send DELETE ") || !strings.Contains(res.stdout, "/graphs/tinkergraph/vertices/1") {
		t.Errorf("stdout = %q", res.stdout)
	}

	res = runCLI(t, "post", "vertices", "-f", "name=marko", "--dry-run", "-o", "json")
	if res.err != nil {
		t.Fatalf("post failed: %v\n%s", res.err, res.stderr)
	}
	var preview map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &preview); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
	}
	if preview["method"] != "POST" || preview["body"] != `{"name":"marko"}` {
		t.Errorf("preview = %v", preview)
	}
	if hits != 0 {
		t.Errorf("server hits = %d, want 0", hits)
	}
}

func TestGetAcceptsFullURL(t *testing.T) {
	var rawQuery string
	handler := newRouteHandler().
		On("GET", "/graphs/gratefulgraph/vertices", func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			jsonResponse(200, `{"results":[{"_id":"1","name":"DARK STAR"}]}`)(w, r)
		})
	server := setupTestEnvWithHandler(t, handler)
	clearEndpointEnv(t)

	target := server.URL + "/graphs/gratefulgraph/vertices?key=name&value=DARK+STAR&rexster.offset.end=5"
	res := runCLI(t, "get", target, "-f", "value=DARK STAR")
	if res.err != nil {
		t.Fatalf("get failed: %v\n%s", res.err, res.stderr)
	}
	want := "key=name&value=DARK+STAR&rexster.offset.end=5"
	if rawQuery != want {
		t.Errorf("query = %q, want %q", rawQuery, want)
	}
}

func TestDebugLogsRequests(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/graphs/tinkergraph/vertices/1", jsonResponse(200, `{"results":{"_id":"1"}}`))
	setupTestEnvWithHandler(t, handler)

	res := runCLI(t, "get", "vertices/1", "--debug")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if !strings.Contains(res.stderr, "request complete") || !strings.Contains(res.stderr, "status=200") {
		t.Errorf("stderr = %q", res.stderr)
	}

	res = runCLI(t, "get", "vertices/1")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if strings.Contains(res.stderr, "request complete") {
		t.Errorf("unexpected debug output without --debug: %q", res.stderr)
	}
}
