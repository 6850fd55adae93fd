package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/keunyop/rubricheck/internal/adapters/llm"
	service "github.com/keunyop/rubricheck/internal/app"
	"github.com/keunyop/rubricheck/internal/domain/llmjson"
	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/internal/domain/reconcile"
	"github.com/keunyop/rubricheck/internal/domain/schema"
	"github.com/keunyop/rubricheck/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fakeInvoker serves canned responses per role and records the prompts
// it was given.
type fakeInvoker struct {
	responses map[model.Role][]string
	errs      map[model.Role]error
	prompts   map[model.Role]string
}

func (f *fakeInvoker) Invoke(_ context.Context, role model.Role, prompt string) ([]string, error) {
	if f.prompts == nil {
		f.prompts = make(map[model.Role]string)
	}
	f.prompts[role] = prompt
	if err := f.errs[role]; err != nil {
		return nil, err
	}
	return f.responses[role], nil
}

const structureResponse = `{"criteria":[
  {"name":"Clarity","max_score":40,"description":"Clear and readable writing"},
  {"name":"Accuracy","max_score":35,"description":"Factually correct claims"},
  {"name":"Depth","max_score":25,"description":"Depth of analysis"}]}`

const evaluateResponse = "Here is my assessment:\n```json\n" + `{
  "summary": "A readable essay with mostly accurate claims. The analysis stays near the surface.",
  "criteria_scores": [
    {"name": "Depth", "estimated_range": [15, 18], "feedback": "Arguments are stated but rarely examined."},
    {"name": "Clarity", "estimated_range": [30, 34], "feedback": "Clean structure with a few dense paragraphs."},
    {"name": "Accuracy", "estimated_range": [25, 28], "feedback": "Two dates are wrong in the second section."}
  ],
  "top_improvements": [
    "Verify the dates cited in the second section",
    "Break up the two longest paragraphs",
    "Follow each claim with one sentence of analysis"
  ]
}` + "\n```\nLet me know if you need anything else."

func workingInvoker() *fakeInvoker {
	return &fakeInvoker{
		responses: map[model.Role][]string{
			model.RoleStructure: {structureResponse},
			model.RoleEvaluate:  {evaluateResponse},
		},
	}
}

func gradingRequest() model.Request {
	return model.Request{
		ID:             "req-1",
		RubricText:     "Clarity: 40 points. Accuracy: 35 points. Depth: 25 points.",
		AssignmentText: "The essay argues that reproducible builds matter because anyone can verify the binary.",
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithModelBaseURL("http://models.internal:8080"),
			service.WithModelAPIKey("secret"),
			service.WithModels("parser-small", "grader-large"),
			service.WithModelTimeout(30*time.Second),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)

			stats := svc.GetStats()
			So(stats["modelBaseURL"], ShouldEqual, "http://models.internal:8080")
			So(stats["structureModel"], ShouldEqual, "parser-small")
			So(stats["evaluateModel"], ShouldEqual, "grader-large")
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And stopping should mark it as stopped", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a started service with a working model", t, func() {
		invoker := workingInvoker()
		svc := service.New(service.WithInvoker(invoker))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When evaluating a request", func() {
			rep, err := svc.Evaluate(ctx, gradingRequest())

			Convey("Then a complete report should come back", func() {
				So(err, ShouldBeNil)
				So(rep.ID, ShouldNotBeEmpty)
				So(rep.CreatedAt.IsZero(), ShouldBeFalse)
				So(rep.Summary, ShouldNotBeEmpty)
				So(rep.TopImprovements, ShouldHaveLength, 3)
			})

			Convey("Then criteria should follow rubric order with bounded ranges", func() {
				So(err, ShouldBeNil)
				So(rep.Criteria, ShouldHaveLength, 3)
				So(rep.Criteria[0].Name, ShouldEqual, "Clarity")
				So(rep.Criteria[1].Name, ShouldEqual, "Accuracy")
				So(rep.Criteria[2].Name, ShouldEqual, "Depth")
				So(rep.OverallRange.Low, ShouldEqual, 70)
				So(rep.OverallRange.High, ShouldEqual, 80)
			})

			Convey("Then the prompts should carry the inputs", func() {
				So(err, ShouldBeNil)
				So(invoker.prompts[model.RoleStructure], ShouldContainSubstring, "Clarity: 40 points")
				So(invoker.prompts[model.RoleEvaluate], ShouldContainSubstring, `"max_score": 40`)
				So(invoker.prompts[model.RoleEvaluate], ShouldContainSubstring, "reproducible builds")
			})

			Convey("Then the stats should count the evaluation", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["evaluations"], ShouldEqual, int64(1))
				So(stats["failures"], ShouldEqual, int64(0))
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithInvoker(workingInvoker()))

		_, err := svc.Evaluate(context.Background(), gradingRequest())

		Convey("Then evaluation should be refused", func() {
			So(err, ShouldWrap, service.ErrNotStarted)
		})
	})
}

func TestService_EvaluateFailures(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	startService := func(invoker *fakeInvoker) *service.Service {
		svc := service.New(service.WithInvoker(invoker))
		So(svc.Start(ctx), ShouldBeNil)
		return svc
	}

	Convey("Given inputs that are empty after normalization", t, func() {
		svc := startService(workingInvoker())
		defer svc.Stop()

		req := gradingRequest()
		req.AssignmentText = "  \n\n  "
		_, err := svc.Evaluate(ctx, req)

		So(err, ShouldWrap, service.ErrMissingInput)
	})

	Convey("Given an unreachable structure model", t, func() {
		invoker := workingInvoker()
		invoker.errs = map[model.Role]error{model.RoleStructure: llm.ErrUnavailable}
		svc := startService(invoker)
		defer svc.Stop()

		_, err := svc.Evaluate(ctx, gradingRequest())

		So(err, ShouldWrap, llm.ErrUnavailable)
	})

	Convey("Given a structure response with no recoverable JSON", t, func() {
		invoker := workingInvoker()
		invoker.responses[model.RoleStructure] = []string{"I could not find any criteria."}
		svc := startService(invoker)
		defer svc.Stop()

		_, err := svc.Evaluate(ctx, gradingRequest())

		So(err, ShouldWrap, llmjson.ErrUnparseable)
	})

	Convey("Given a structure response with a single criterion", t, func() {
		invoker := workingInvoker()
		invoker.responses[model.RoleStructure] = []string{
			`{"criteria":[{"name":"Only","max_score":10,"description":"d"}]}`,
		}
		svc := startService(invoker)
		defer svc.Stop()

		_, err := svc.Evaluate(ctx, gradingRequest())

		So(err, ShouldWrap, schema.ErrRubricInvalid)
	})

	Convey("Given an evaluation with an inverted range", t, func() {
		invoker := workingInvoker()
		invoker.responses[model.RoleEvaluate] = []string{`{
			"summary": "Fine.",
			"criteria_scores": [
				{"name": "Clarity", "estimated_range": [34, 30], "feedback": "f"},
				{"name": "Accuracy", "estimated_range": [25, 28], "feedback": "f"},
				{"name": "Depth", "estimated_range": [15, 18], "feedback": "f"}
			],
			"top_improvements": ["one", "two", "three"]
		}`}
		svc := startService(invoker)
		defer svc.Stop()

		_, err := svc.Evaluate(ctx, gradingRequest())

		So(err, ShouldWrap, schema.ErrEvaluationInvalid)
	})

	Convey("Given an evaluation that scores the wrong criteria", t, func() {
		invoker := workingInvoker()
		invoker.responses[model.RoleEvaluate] = []string{`{
			"summary": "Fine.",
			"criteria_scores": [
				{"name": "Style", "estimated_range": [1, 2], "feedback": "f"},
				{"name": "Accuracy", "estimated_range": [25, 28], "feedback": "f"},
				{"name": "Depth", "estimated_range": [15, 18], "feedback": "f"}
			],
			"top_improvements": ["one", "two", "three"]
		}`}
		svc := startService(invoker)
		defer svc.Stop()

		_, err := svc.Evaluate(ctx, gradingRequest())

		Convey("Then the failure should surface the mismatch", func() {
			So(err, ShouldWrap, reconcile.ErrMismatch)

			stats := svc.GetStats()
			So(stats["failures"], ShouldEqual, int64(1))
		})
	})
}
