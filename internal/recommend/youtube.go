package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Video is one suggested YouTube video: a display title and the search query a
// student would type to find it. The server never calls YouTube itself.
type Video struct {
	Title       string `json:"title"`
	SearchQuery string `json:"search_query"`
}

// maxContentRunes caps how much document text goes into the prompt.
const maxContentRunes = 3000

// ErrNoVideos means the model's output parsed but held no usable videos.
var ErrNoVideos = errors.New("no videos in model output")

// BuildPrompt asks for video recommendations grounded in document content when
// it is available, falling back to a bare topic prompt otherwise. Callers must
// ensure at least one of the two is non-empty.
func BuildPrompt(topic, documentContent string) string {
	if documentContent != "" {
		content := documentContent
		ellipsis := ""
		if runes := []rune(content); len(runes) > maxContentRunes {
			content = string(runes[:maxContentRunes])
			ellipsis = " ..."
		}
		return fmt.Sprintf(`You are an expert at finding educational content on YouTube.
Based on the document content below, analyze the key topics and concepts, then generate a list of 5 relevant and helpful YouTube video recommendations for a student studying this material.

Document Content:
%s%s

Return a single JSON object with one key: "videos".
The value should be an array of 5 video objects.

For each video object, provide:
- "title": A concise, engaging, and descriptive title for the video that relates to the document content.
- "search_query": The ideal search query a user should type into YouTube to find this type of video.

Focus on the main concepts, theories, or subjects covered in the document. Make the recommendations specific and educational.`, content, ellipsis)
	}

	return fmt.Sprintf(`You are an expert at finding educational content on YouTube.
For the topic "%s", generate a list of 5 relevant and helpful video ideas for a student.

Return a single JSON object with one key: "videos".
The value should be an array of 5 video objects.

For each video object, provide:
- "title": A concise, engaging, and descriptive title for the video.
- "search_query": The ideal search query a user should type into YouTube to find this type of video.`, topic)
}

// ParseVideos turns raw model output into the recommendation list. The model
// is told to return a bare JSON object but tends to wrap it in markdown
// fences, so those are stripped first. Videos missing a title or search query
// are filtered out.
func ParseVideos(raw string) ([]Video, error) {
	text := stripCodeFences(strings.TrimSpace(raw))

	var resp struct {
		Videos []Video `json:"videos"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("model output is not a videos object: %w", err)
	}

	valid := make([]Video, 0, len(resp.Videos))
	for _, v := range resp.Videos {
		if v.Title == "" || v.SearchQuery == "" {
			continue
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, ErrNoVideos
	}
	return valid, nil
}

func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		return strings.TrimSpace(text)
	}
	return text
}
