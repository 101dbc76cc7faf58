package services

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/shared"
)

const AI_SVC = "ai_svc"

const (
	checkEmotion    = "emotion"
	checkBlame      = "blame"
	checkSummary    = "summary"
	checkHints      = "hints"
	checkCategorize = "categorize"
	checkLetter     = "letter"
	checkSolutions  = "solutions"
	checkReply      = "reply"

	outcomeOK       = "ok"
	outcomeRepaired = "repaired"
	outcomeFallback = "fallback"
	outcomeError    = "error"

	maxReflectionHints = 7
	solutionsPerMix    = 3
)

const (
	emotionFallbackSuggestion = "이 상황에서 양양이 어떤 감정을 느꼈을지 생각해보고 추가해보세요."
	summaryFallback           = "이 상황"
	defaultSolutionText       = "작게 시작하기"
	otherCategoryLabel        = "기타"
)

var defaultReflectionHints = []string{
	"집중력 부족으로 인한 어려움",
	"업무 효율성 문제",
	"동료와의 관계 걱정",
	"자신감 하락",
	"우선순위 설정의 어려움",
}

var solutionCategoryOrder = []string{
	"inner_peace",
	"physical_environment",
	"social_support",
	"self_advocacy",
	"behavioral_activation",
	"cognitive_reframing",
}

var solutionCategories = map[string]string{
	"inner_peace":           "내적 평화와 마음 돌보기",
	"physical_environment":  "물리적 환경과 일상의 루틴 조정",
	"social_support":        "사회적 연결 및 지지 확보하기",
	"self_advocacy":         "자기옹호와 자기주장 강화하기",
	"behavioral_activation": "구체적 행동 활성화 전략",
	"cognitive_reframing":   "인지적 재구성과 관점 전환",
}

var defaultSolutions = map[string]string{
	"inner_peace":           "호흡법 연습하기",
	"physical_environment":  "공간 정리하기",
	"social_support":        "동료에게 말하기",
	"self_advocacy":         "도움 요청하기",
	"behavioral_activation": "목록 만들기",
	"cognitive_reframing":   "관점 바꾸기",
}

var (
	quotedPhrase   = regexp.MustCompile(`"([^"]+)"`)
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)
	bulletPrefix   = regexp.MustCompile(`^[-•*]\s*`)
	hangulPrefix   = regexp.MustCompile(`^[가-힣]+\.\s*`)
	codeFence      = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// AIService wraps every call to the language model. Classification helpers
// never fail: they fall back to fixed results. Long-form generation returns
// errors to the caller.
type AIService struct {
	appContext.DefaultService

	llm         LLMClient
	letterModel string

	mu  sync.Mutex
	rnd *rand.Rand
}

func (svc *AIService) Id() string {
	return AI_SVC
}

func (svc *AIService) Configure(ctx *appContext.Context) error {
	svc.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	return svc.DefaultService.Configure(ctx)
}

func (svc *AIService) Start() error {
	openai := svc.Service(OPENAI_SVC).(*OpenAIService)
	svc.llm = openai
	svc.letterModel = openai.LetterModel()
	return nil
}

// NewAIService builds the service around any LLM client.
func NewAIService(llm LLMClient, seed int64) *AIService {
	return &AIService{
		llm:         llm,
		letterModel: "gpt-4",
		rnd:         rand.New(rand.NewSource(seed)),
	}
}

func (svc *AIService) complete(ctx context.Context, check string, req CompletionRequest) (string, error) {
	start := time.Now()
	out, err := svc.llm.Complete(ctx, req)
	llmRequestDurationSeconds.WithLabelValues(check).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrLLMDisabled) {
		log.Warn().Err(err).Str("check", check).Msg("LLM request failed")
	}
	return out, err
}

// withRand serializes access to the shared source.
func (svc *AIService) withRand(fn func(r *rand.Rand)) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	fn(svc.rnd)
}

func (svc *AIService) CheckEmotion(ctx context.Context, content string) model.EmotionCheckResult {
	raw, err := svc.complete(ctx, checkEmotion, CompletionRequest{
		System:      emotionSystemPrompt,
		Prompt:      emotionPrompt(content),
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		recordClassification(checkEmotion, outcomeError)
		return model.EmotionCheckResult{Suggestion: emotionFallbackSuggestion}
	}

	result, ok := parseLLMJSON[model.EmotionCheckResult](checkEmotion, raw)
	if !ok {
		return model.EmotionCheckResult{Suggestion: emotionFallbackSuggestion}
	}
	return result
}

func (svc *AIService) SummarizeSituation(ctx context.Context, content string) string {
	raw, err := svc.complete(ctx, checkSummary, CompletionRequest{
		System:      summarySystemPrompt,
		Prompt:      summaryPrompt(content),
		MaxTokens:   50,
		Temperature: 0.3,
	})
	if err != nil {
		recordClassification(checkSummary, outcomeError)
		return summaryFallback
	}

	result, ok := parseLLMJSON[dto.SummarizeResponse](checkSummary, raw)
	if !ok || strings.TrimSpace(result.Summary) == "" {
		return summaryFallback
	}
	return strings.TrimSpace(result.Summary)
}

func (svc *AIService) CheckBlame(ctx context.Context, content, letter string) model.BlameCheckResult {
	fallback := model.BlameCheckResult{EnvironmentalFactors: []string{}}

	raw, err := svc.complete(ctx, checkBlame, CompletionRequest{
		System:      blameSystemPrompt,
		Prompt:      blamePrompt(letter, content),
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		recordClassification(checkBlame, outcomeError)
		return fallback
	}

	result, ok := parseLLMJSON[model.BlameCheckResult](checkBlame, raw)
	if !ok {
		return fallback
	}
	if result.EnvironmentalFactors == nil {
		result.EnvironmentalFactors = []string{}
	}
	return result
}

func (svc *AIService) GenerateReflectionHints(ctx context.Context, characterName string, items []dto.HighlightedData) []string {
	raw, err := svc.complete(ctx, checkHints, CompletionRequest{
		Model:       svc.letterModel,
		System:      hintsSystemPrompt,
		Prompt:      hintsPrompt(characterName, items),
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		recordClassification(checkHints, outcomeError)
		return append([]string(nil), defaultReflectionHints...)
	}

	hints := parseHints(raw)
	if len(hints) == 0 {
		recordClassification(checkHints, outcomeFallback)
		hints = append([]string(nil), defaultReflectionHints...)
	} else {
		recordClassification(checkHints, outcomeOK)
	}
	if len(hints) > maxReflectionHints {
		hints = hints[:maxReflectionHints]
	}
	return hints
}

// parseHints prefers quoted phrases and otherwise cleans list markers off each
// line, keeping lines of 3 to 49 characters.
func parseHints(raw string) []string {
	var hints []string

	if matches := quotedPhrase.FindAllStringSubmatch(raw, -1); len(matches) > 0 {
		for _, m := range matches {
			if h := strings.TrimSpace(m[1]); h != "" {
				hints = append(hints, h)
			}
		}
		return hints
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = numberedPrefix.ReplaceAllString(line, "")
		line = bulletPrefix.ReplaceAllString(line, "")
		line = hangulPrefix.ReplaceAllString(line, "")
		line = strings.NewReplacer("[", "", "]", "").Replace(line)
		line = strings.TrimSpace(line)

		if n := len([]rune(line)); n > 2 && n < 50 {
			hints = append(hints, line)
		}
	}
	return hints
}

type categorization struct {
	Existing []string `json:"existing"`
	New      []string `json:"new"`
}

// CategorizeStrengths maps free-text strengths onto the catalogue. Any failure
// yields a single default category.
func (svc *AIService) CategorizeStrengths(ctx context.Context, general string) *model.GeneralStrengths {
	fallback := &model.GeneralStrengths{
		Content:            general,
		ExistingCategories: []string{defaultGeneralStrength},
		NewCategories:      []string{},
		Fallback:           true,
	}

	raw, err := svc.complete(ctx, checkCategorize, CompletionRequest{
		Model:       svc.letterModel,
		System:      categorizeSystemPrompt,
		Prompt:      categorizePrompt(general),
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		recordClassification(checkCategorize, outcomeError)
		return fallback
	}

	result, ok := parseLLMJSON[categorization](checkCategorize, raw)
	if !ok {
		return fallback
	}

	out := &model.GeneralStrengths{
		Content:            general,
		ExistingCategories: result.Existing,
		NewCategories:      result.New,
	}
	if out.ExistingCategories == nil {
		out.ExistingCategories = []string{}
	}
	if out.NewCategories == nil {
		out.NewCategories = []string{}
	}
	return out
}

func (svc *AIService) GenerateLetterBody(ctx context.Context, in letterPromptInput) (string, error) {
	raw, err := svc.complete(ctx, checkLetter, CompletionRequest{
		Model:       svc.letterModel,
		System:      letterSystemPrompt,
		Prompt:      letterPrompt(in),
		MaxTokens:   3500,
		Temperature: 0.8,
	})
	if err != nil {
		recordClassification(checkLetter, outcomeError)
		return "", shared.NewAppError(http.StatusBadGateway, "Failed to generate letter", err)
	}
	if strings.TrimSpace(raw) == "" {
		recordClassification(checkLetter, outcomeError)
		return "", shared.NewAppError(http.StatusBadGateway, "Failed to generate letter", errors.New("empty completion"))
	}
	recordClassification(checkLetter, outcomeOK)
	return raw, nil
}

// pickSolutionCategories draws n distinct categories.
func (svc *AIService) pickSolutionCategories(n int) []string {
	keys := append([]string(nil), solutionCategoryOrder...)
	svc.withRand(func(r *rand.Rand) {
		r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	})
	return keys[:n]
}

func defaultSuggestions(categories []string) []dto.SolutionSuggestion {
	out := make([]dto.SolutionSuggestion, 0, len(categories))
	for _, c := range categories {
		text, ok := defaultSolutions[c]
		if !ok {
			text = defaultSolutionText
		}
		out = append(out, dto.SolutionSuggestion{Category: c, CategoryLabel: solutionCategories[c], Text: text})
	}
	return out
}

func (svc *AIService) GenerateSolutions(ctx context.Context, req dto.GenerateSolutionsRequest) []dto.SolutionSuggestion {
	categories := svc.pickSolutionCategories(solutionsPerMix)

	raw, err := svc.complete(ctx, checkSolutions, CompletionRequest{
		System:      solutionsSystemPrompt,
		Prompt:      solutionsPrompt(req, categories),
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		recordClassification(checkSolutions, outcomeError)
		return defaultSuggestions(categories)
	}

	result, ok := parseLLMJSON[dto.GenerateSolutionsResponse](checkSolutions, raw)
	if !ok || len(result.Suggestions) == 0 {
		return defaultSuggestions(categories)
	}

	for i := range result.Suggestions {
		label, known := solutionCategories[result.Suggestions[i].Category]
		if !known {
			label = otherCategoryLabel
		}
		result.Suggestions[i].CategoryLabel = label
	}
	return result.Suggestions
}

func (svc *AIService) GenerateResponseLetter(ctx context.Context, req dto.GenerateResponseLetterRequest) (string, error) {
	raw, err := svc.complete(ctx, checkReply, CompletionRequest{
		Model:       svc.letterModel,
		System:      replySystemPrompt,
		Prompt:      replyPrompt(req),
		MaxTokens:   4000,
		Temperature: 0.7,
	})
	if err != nil {
		recordClassification(checkReply, outcomeError)
		return "", shared.NewAppError(http.StatusBadGateway, "Failed to generate response letter", err)
	}
	if strings.TrimSpace(raw) == "" {
		recordClassification(checkReply, outcomeError)
		return "", shared.NewAppError(http.StatusBadGateway, "Failed to generate response letter", errors.New("empty completion"))
	}
	recordClassification(checkReply, outcomeOK)
	return raw, nil
}

// randomLetterPersona draws the character name, age (20 to 34) and occupation.
func (svc *AIService) randomLetterPersona() (string, int, string) {
	var name, occupation string
	var age int
	svc.withRand(func(r *rand.Rand) {
		name = animalCharacters[r.Intn(len(animalCharacters))]
		age = 20 + r.Intn(15)
		occupation = animalOccupations[r.Intn(len(animalOccupations))]
	})
	return name, age, occupation
}

func (svc *AIService) selectStrengths(tagged []model.TaggedStrength, general *model.GeneralStrengths) []model.SelectedStrength {
	var out []model.SelectedStrength
	svc.withRand(func(r *rand.Rand) {
		out = selectStrengths(tagged, general, r)
	})
	return out
}

// parseLLMJSON decodes a JSON answer, repairing it once when the model
// returned something close to JSON.
func parseLLMJSON[T any](check, raw string) (T, bool) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var out T
	if err := shared.UnmarshalString(text, &out); err == nil {
		recordClassification(check, outcomeOK)
		return out, true
	}

	if repaired, err := jsonrepair.JSONRepair(text); err == nil {
		var fixed T
		if err := shared.UnmarshalString(repaired, &fixed); err == nil {
			recordClassification(check, outcomeRepaired)
			return fixed, true
		}
	}

	log.Debug().Str("check", check).Str("raw", raw).Msg("Unparseable LLM answer, using fallback")
	recordClassification(check, outcomeFallback)
	var zero T
	return zero, false
}
