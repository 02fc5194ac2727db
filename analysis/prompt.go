package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/basexlabs/basex-oracle/analysis/completion"
	"github.com/basexlabs/basex-oracle/protocol"
)

const (
	// descriptionLimit is how many characters of the description are sent to the model.
	descriptionLimit = 100

	systemPrompt = "You are an AI Youtube Video Data analyzer. Provide 10 key metadata words and 3 performance " +
		"predictions (score between 0-100. 0 being the least viral and 100 most) based on the title, description, " +
		"likesCount, CommentCount and viewCount. Use single words only."

	answerFormat = "M:key1,key2,key3,key4,key5,key6,key7,key8,key9,key10;P:SCORE"
)

// BuildPrompt returns the chat messages that ask for the metadata keywords and virality score of v.
func BuildPrompt(v protocol.Video) []completion.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", v.Title)
	fmt.Fprintf(&b, "Description: %s\n", truncateRunes(v.Description, descriptionLimit))
	fmt.Fprintf(&b, "Likes: %d\n", v.LikeCount)
	fmt.Fprintf(&b, "viewCount: %d\n", v.ViewCount)
	fmt.Fprintf(&b, "commentCount: %d\n\n", v.CommentCount)
	b.WriteString("Analyze and respond EXACTLY in this format:\n")
	b.WriteString(answerFormat)

	return []completion.Message{
		{Role: completion.RoleSystem, Content: systemPrompt},
		{Role: completion.RoleUser, Content: b.String()},
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
