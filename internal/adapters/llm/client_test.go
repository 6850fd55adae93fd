package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/keunyop/rubricheck/internal/adapters/llm"
	"github.com/keunyop/rubricheck/internal/domain/model"
)

func TestInvoke(t *testing.T) {
	Convey("Given an OpenAI-compatible backend", t, func() {
		type capturedRequest struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}

		Convey("When invoking the evaluate role", func() {
			var gotPath, gotAuth string
			var gotBody capturedRequest

			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_, _ = w.Write([]byte(`{"choices":[` +
					`{"message":{"content":"first candidate"}},` +
					`{"message":{"content":"second candidate"}}]}`))
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithAPIKey("secret-key"),
				llm.WithModel(model.RoleEvaluate, "grader-large"),
			)

			candidates, err := client.Invoke(context.Background(), model.RoleEvaluate, "score this")

			Convey("Then all choices should come back in order", func() {
				So(err, ShouldBeNil)
				So(candidates, ShouldResemble, []string{"first candidate", "second candidate"})
			})

			Convey("Then the wire request should be deterministic", func() {
				So(gotPath, ShouldEqual, "/v1/chat/completions")
				So(gotAuth, ShouldEqual, "Bearer secret-key")
				So(gotBody.Model, ShouldEqual, "grader-large")
				So(gotBody.Temperature, ShouldEqual, 0)
				So(gotBody.Messages, ShouldHaveLength, 1)
				So(gotBody.Messages[0].Role, ShouldEqual, "user")
				So(gotBody.Messages[0].Content, ShouldEqual, "score this")
			})
		})

		Convey("When no model is configured for the role", func() {
			requests := 0
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(llm.WithBaseURL(backend.URL))

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the backend should be reported unavailable without a call", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
				So(requests, ShouldEqual, 0)
			})
		})

		Convey("When the backend replies with an error status", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
			)

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the error should carry the status and body", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
				So(err.Error(), ShouldContainSubstring, "503")
				So(err.Error(), ShouldContainSubstring, "model not loaded")
			})
		})

		Convey("When the backend replies with no choices", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
			)

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the backend should be reported unavailable", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
			})
		})

		Convey("When the backend pads the choice list with empty contents", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[` +
					`{"message":{"content":""}},` +
					`{"message":{"content":"  \n"}},` +
					`{"message":{"content":"{\"ok\":true}"}}]}`))
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
			)

			candidates, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then only the usable content should come back", func() {
				So(err, ShouldBeNil)
				So(candidates, ShouldResemble, []string{`{"ok":true}`})
			})
		})

		Convey("When the backend replies with a malformed body", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json at all`))
			}))
			defer backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
			)

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the backend should be reported unavailable", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
			})
		})

		Convey("When the backend is unreachable", func() {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			backend.Close()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
			)

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the backend should be reported unavailable", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
			})
		})

		Convey("When the backend exceeds the invocation timeout", func() {
			release := make(chan struct{})
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-release
			}))
			defer func() {
				close(release)
				backend.Close()
			}()

			client := llm.NewHTTPClient(
				llm.WithBaseURL(backend.URL),
				llm.WithModel(model.RoleStructure, "parser-small"),
				llm.WithTimeout(50*time.Millisecond),
			)

			_, err := client.Invoke(context.Background(), model.RoleStructure, "parse this")

			Convey("Then the backend should be reported unavailable", func() {
				So(err, ShouldWrap, llm.ErrUnavailable)
			})
		})
	})
}
