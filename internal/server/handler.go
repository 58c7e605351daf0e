package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobassist/internal/ai"
	"jobassist/internal/common"
	"jobassist/internal/config"
	"jobassist/internal/errors"
	"jobassist/internal/extract"
	"jobassist/internal/observability"
	"jobassist/internal/profile"
	"jobassist/internal/scrape"
	"jobassist/internal/types"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxQuestionLists bounds the count accepted by /extract/questions
const maxQuestionLists = 100

// ExtractSectionsResponse is the body returned by /extract/sections
type ExtractSectionsResponse struct {
	Sections []types.Section `json:"sections"`
	Fallback bool            `json:"fallback"`
	Reason   string          `json:"reason,omitempty"`
	Dropped  int             `json:"dropped,omitempty"`
}

// ExtractQuestionsResponse is the body returned by /extract/questions
type ExtractQuestionsResponse struct {
	Questions [][]string `json:"questions"`
	Fallback  bool       `json:"fallback"`
	Reason    string     `json:"reason,omitempty"`
	Dropped   int        `json:"dropped,omitempty"`
}

// createPostingHandler breaks a job posting into sections
func (s *Server) createPostingHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	fetcher := newMeteredFetcher(s.fetcher, om.GetMetrics())

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.analyze_posting")
		defer span.End()

		var req PostingRequest
		if err := parseJSONRequest(r, &req); err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			if strings.TrimSpace(req.URL) == "" {
				failRequest(w, span, "Missing job description", fmt.Errorf("jobDescription or url field is required"))
				return
			}
			page, err := fetcher.Fetch(ctx, req.URL)
			if err != nil {
				s.writeAppError(w, span, "Failed to fetch job posting", err)
				return
			}
			if strings.TrimSpace(page.Text) == "" {
				s.writeAppError(w, span, "Failed to fetch job posting",
					errors.NewScrapeError(errors.ErrCodeFetchFailed, "Page has no readable text", nil).WithContext("url", req.URL))
				return
			}
			req.JobDescription = page.Text
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.Bool("request.from_url", req.URL != ""),
			attribute.String("operation", config.OperationPosting),
		)

		input := types.JobPostingInput{JobDescription: req.JobDescription, SourceURL: req.URL}
		metrics := om.GetMetrics()
		result, err := runAIOperation(ctx, s, metrics, config.OperationPosting,
			func(ctx context.Context, p ai.AIProvider) (types.JobPostingOutput, *ai.TokenUsage, error) {
				return p.AnalyzeJobPosting(ctx, input)
			})
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.EventPostingAnalyzed, false)
			s.writeAppError(w, span, "Failed to analyze job posting", err)
			return
		}

		metrics.RecordExtraction(ctx, "sections", extract.Outcome{Fallback: result.Fallback, Dropped: result.Dropped})
		metrics.RecordBusinessMetric(ctx, observability.EventPostingAnalyzed, true,
			attribute.Int("sections", len(result.Sections)),
			attribute.Bool("fallback", result.Fallback))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.sections", len(result.Sections)),
		)
		writeJSON(w, span, http.StatusOK, result)
	}
}

// createQuestionsHandler suggests questions for each contact
func (s *Server) createQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.suggest_questions")
		defer span.End()

		body, err := readJSONBody(r)
		if err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}

		contacts, err := common.ParseContacts(string(body))
		if err != nil {
			s.writeAppError(w, span, "Invalid contacts", err)
			return
		}
		if len(contacts) == 0 {
			failRequest(w, span, "Missing contacts", fmt.Errorf("contacts field must list at least one contact"))
			return
		}

		input := types.ContactQuestionsInput{
			Contacts:  contacts,
			TargetJob: gjson.GetBytes(body, "targetJob").String(),
		}
		span.SetAttributes(
			attribute.Int("request.contacts", len(contacts)),
			attribute.String("operation", config.OperationQuestions),
		)

		metrics := om.GetMetrics()
		result, err := runAIOperation(ctx, s, metrics, config.OperationQuestions,
			func(ctx context.Context, p ai.AIProvider) (types.ContactQuestionsOutput, *ai.TokenUsage, error) {
				return p.SuggestQuestions(ctx, input)
			})
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.EventQuestionsSuggested, false)
			s.writeAppError(w, span, "Failed to suggest questions", err)
			return
		}

		metrics.RecordExtraction(ctx, "questions", extract.Outcome{Fallback: result.Fallback, Dropped: result.Dropped})
		metrics.RecordBusinessMetric(ctx, observability.EventQuestionsSuggested, true,
			attribute.Int("contacts", len(contacts)),
			attribute.Bool("fallback", result.Fallback))

		span.SetAttributes(attribute.Bool("success", true))
		writeJSON(w, span, http.StatusOK, result)
	}
}

// createPlanHandler builds a learning plan from a resume and a job description
func (s *Server) createPlanHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.learning_plan")
		defer span.End()

		var req types.LearningPlanInput
		if err := parseJSONRequest(r, &req); err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}

		if strings.TrimSpace(req.Resume) == "" {
			failRequest(w, span, "Missing resume", fmt.Errorf("resume field is required"))
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			failRequest(w, span, "Missing job description", fmt.Errorf("jobDescription field is required"))
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.Resume)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", config.OperationPlan),
		)

		metrics := om.GetMetrics()
		result, err := runAIOperation(ctx, s, metrics, config.OperationPlan,
			func(ctx context.Context, p ai.AIProvider) (types.LearningPlanOutput, *ai.TokenUsage, error) {
				return p.BuildLearningPlan(ctx, req)
			})
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.EventPlanBuilt, false)
			s.writeAppError(w, span, "Failed to build learning plan", err)
			return
		}

		metrics.RecordExtraction(ctx, "sections", extract.Outcome{Fallback: result.Fallback, Dropped: result.Dropped})
		metrics.RecordBusinessMetric(ctx, observability.EventPlanBuilt, true,
			attribute.Int("steps", len(result.Steps)),
			attribute.Bool("fallback", result.Fallback))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.steps", len(result.Steps)),
		)
		writeJSON(w, span, http.StatusOK, result)
	}
}

// createExtractSectionsHandler runs the section pipeline over posted text
func (s *Server) createExtractSectionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.extract_sections")
		defer span.End()

		var req types.ExtractSectionsInput
		if err := parseJSONRequest(r, &req); err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}

		sections, outcome := extract.ExtractSections(req.Text)
		om.GetMetrics().RecordExtraction(ctx, "sections", outcome)
		span.SetAttributes(
			attribute.Bool("extract.fallback", outcome.Fallback),
			attribute.Int("extract.dropped", outcome.Dropped),
		)

		writeJSON(w, span, http.StatusOK, ExtractSectionsResponse{
			Sections: sections,
			Fallback: outcome.Fallback,
			Reason:   outcome.Reason(),
			Dropped:  outcome.Dropped,
		})
	}
}

// createExtractQuestionsHandler runs the question-list pipeline over posted text
func (s *Server) createExtractQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.extract_questions")
		defer span.End()

		var req types.ExtractQuestionsInput
		if err := parseJSONRequest(r, &req); err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}
		if req.Count > maxQuestionLists {
			failRequest(w, span, "Count too large", fmt.Errorf("count must be at most %d", maxQuestionLists))
			return
		}

		lists, outcome := extract.ExtractQuestions(req.Text, req.Count)
		om.GetMetrics().RecordExtraction(ctx, "questions", outcome)
		span.SetAttributes(
			attribute.Bool("extract.fallback", outcome.Fallback),
			attribute.Int("extract.dropped", outcome.Dropped),
		)

		writeJSON(w, span, http.StatusOK, ExtractQuestionsResponse{
			Questions: lists,
			Fallback:  outcome.Fallback,
			Reason:    outcome.Reason(),
			Dropped:   outcome.Dropped,
		})
	}
}

// createProfileMapHandler maps a posted external profile document
func (s *Server) createProfileMapHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.profile_map")
		defer span.End()

		body, err := readJSONBody(r)
		if err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}

		ext, err := profile.Decode(body)
		metrics := om.GetMetrics()
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.EventProfileMapped, false, attribute.String("source", "document"))
			s.writeAppError(w, span, "Invalid profile",
				errors.NewValidationError(errors.ErrCodeInvalidProfile, "Profile document could not be decoded", err))
			return
		}

		result := profile.Map(ext)
		metrics.RecordBusinessMetric(ctx, observability.EventProfileMapped, true, attribute.String("source", "document"))
		writeJSON(w, span, http.StatusOK, result)
	}
}

// createProfileImportHandler fetches a public profile page and maps it
func (s *Server) createProfileImportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	metrics := om.GetMetrics()
	importer := profile.NewImporter(newMeteredFetcher(s.fetcher, metrics), s.AppConfig.Scrape.ProfilePath, s.Logger)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("jobassist.api").Start(r.Context(), "api.profile_import")
		defer span.End()

		var req types.ProfileImportInput
		if err := parseJSONRequest(r, &req); err != nil {
			failRequest(w, span, "Invalid request body", err)
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			failRequest(w, span, "Missing URL", fmt.Errorf("url field is required"))
			return
		}
		span.SetAttributes(attribute.String("request.url", req.URL))

		result, err := importer.Import(ctx, req.URL, req.Path)
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.EventProfileMapped, false, attribute.String("source", "url"))
			s.writeAppError(w, span, "Failed to import profile", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, observability.EventProfileMapped, true, attribute.String("source", "url"))
		writeJSON(w, span, http.StatusOK, result)
	}
}

// runAIOperation resolves the provider for op and tracks the call
func runAIOperation[Output any](
	ctx context.Context,
	s *Server,
	metrics *observability.Metrics,
	op string,
	call func(context.Context, ai.AIProvider) (Output, *ai.TokenUsage, error),
) (Output, error) {
	var result Output

	provider, err := s.providers.get(op)
	if err != nil {
		return result, err
	}

	err = metrics.TrackAIOperation(ctx, op, func(ctx context.Context) *observability.AIOperationResult {
		output, tokenUsage, aiErr := call(ctx, provider)
		result = output
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	})
	return result, err
}

// meteredFetcher records the duration of every page fetch
type meteredFetcher struct {
	next    profile.PageFetcher
	metrics *observability.Metrics
}

func newMeteredFetcher(next profile.PageFetcher, metrics *observability.Metrics) *meteredFetcher {
	return &meteredFetcher{next: next, metrics: metrics}
}

func (f *meteredFetcher) Fetch(ctx context.Context, rawURL string) (*scrape.Page, error) {
	start := time.Now()
	page, err := f.next.Fetch(ctx, rawURL)
	f.metrics.RecordFetch(ctx, time.Since(start), err == nil)
	return page, err
}

// failRequest reports a malformed request
func failRequest(w http.ResponseWriter, span trace.Span, title string, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", string(errors.ErrorTypeValidation)))
	writeErrorResponse(w, title, err.Error(), http.StatusBadRequest)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	metrics := om.GetMetrics()
	return s.rateLimitMiddleware(func(r *http.Request) {
		metrics.RecordRateLimitHit(r.Context(),
			attribute.String("endpoint", r.URL.Path),
			attribute.String("method", r.Method))
	})
}
