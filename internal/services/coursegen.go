package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

// CourseGenerator produces the raw course text for a completed profile
type CourseGenerator interface {
	GenerateCourse(profile *models.LearnerProfile) (string, error)
}

// OpenAIGenerator calls an Azure OpenAI chat-completions deployment
type OpenAIGenerator struct {
	client     *resty.Client
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
}

// NewOpenAIGenerator creates a generator from environment configuration
func NewOpenAIGenerator() (*OpenAIGenerator, error) {
	endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	apiKey := os.Getenv("AZURE_OPENAI_KEY")
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("missing Azure OpenAI credentials in environment variables")
	}

	deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")
	if deployment == "" {
		deployment = "o4-mini"
	}

	client := resty.New().
		SetTimeout(90 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(3 * time.Second)

	return &OpenAIGenerator{
		client:     client,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: "2024-12-01-preview",
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCourse asks the model for a 3-day, 9-module course as JSON
func (g *OpenAIGenerator) GenerateCourse(profile *models.LearnerProfile) (string, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		g.endpoint, g.deployment, g.apiVersion)

	body := chatRequest{
		Messages:            []chatMessage{{Role: "user", Content: buildCoursePrompt(profile)}},
		MaxCompletionTokens: 3991,
	}

	var result chatResponse
	resp, err := g.client.R().
		SetHeader("api-key", g.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrContentGenerationFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", models.ErrContentGenerationFailed, resp.StatusCode())
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: %s", models.ErrContentGenerationFailed, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrContentGenerationFailed)
	}

	log.Printf("✅ Course generated for request %s (topic: %s)", profile.RequestID, profile.Topic)
	return result.Choices[0].Message.Content, nil
}

func buildCoursePrompt(profile *models.LearnerProfile) string {
	return fmt.Sprintf(`Create a personalized 3-day micro-course on "%s" in "%s", using the teaching style of "%s", designed to be delivered via WhatsApp. The course should help the learner achieve their goal: "%s".

Guidelines:

1. Structure:
- Duration: 3 days.
- Modules per Day: 3 modules (total of 9 modules).
- Modules 1 and 2 teach key concepts and skills; Module 3 includes a reflection and an actionable task applying the day's learning.

2. Content Requirements:
- Each module must be 10 to 12 sentences.
- Start with a compelling hook, focus on one core concept per module.
- Use clear, simple language suitable for mobile reading, with 1-2 relevant emojis.

3. Output Format:
- Respond ONLY with valid JSON (no markdown, no triple backticks, no explanations).
- Each module must be an object with a single property "content" containing the text.
- Shape:
{
  "Day 1": {
    "Day 1 - Module 1": { "content": "..." },
    "Day 1 - Module 2": { "content": "..." },
    "Day 1 - Module 3": { "content": "..." }
  },
  "Day 2": { ... },
  "Day 3": { ... }
}`, profile.Topic, profile.Language, profile.Style, profile.Goal)
}

var jsonFenceRe = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseCourseJSON turns the generator's raw reply into ordered CourseDay
// rows. The model is told not to wrap the JSON in markdown but sometimes
// does anyway, so fenced blocks and bare braces are both accepted.
func ParseCourseJSON(raw, requestID, courseName string) ([]*models.CourseDay, error) {
	jsonString := raw
	if match := jsonFenceRe.FindStringSubmatch(raw); match != nil {
		jsonString = match[1]
	} else if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			jsonString = raw[start : end+1]
		}
	}
	jsonString = strings.TrimSpace(jsonString)
	if jsonString == "" {
		return nil, fmt.Errorf("%w: no JSON found in response", models.ErrContentParseFailed)
	}

	var course map[string]map[string]struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(jsonString), &course); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrContentParseFailed, err)
	}

	days := make([]*models.CourseDay, 0, models.CourseDays)
	for dayNum := 1; dayNum <= models.CourseDays; dayNum++ {
		dayKey := fmt.Sprintf("Day %d", dayNum)
		modules, ok := course[dayKey]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", models.ErrContentParseFailed, dayKey)
		}

		day := &models.CourseDay{
			RequestID:  requestID,
			CourseName: courseName,
			Day:        dayNum,
		}
		for moduleNum := 1; moduleNum <= models.ModulesPerDay; moduleNum++ {
			moduleKey := fmt.Sprintf("Day %d - Module %d", dayNum, moduleNum)
			module, ok := modules[moduleKey]
			if !ok || strings.TrimSpace(module.Content) == "" {
				return nil, fmt.Errorf("%w: missing %q", models.ErrContentParseFailed, moduleKey)
			}
			switch moduleNum {
			case 1:
				day.Module1 = module.Content
			case 2:
				day.Module2 = module.Content
			case 3:
				day.Module3 = module.Content
			}
		}
		days = append(days, day)
	}

	return days, nil
}
