package suggestion

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a grocery shopping assistant. I have these items in my shopping list:
%s

Please suggest 3-5 additional grocery items that would complement this list. For each suggestion, provide:
- name: the item name
- category: one of (%s)
- reason: why this item is suggested (complementary, essential, healthy, etc.)
- priority: low, medium, or high

Respond in valid JSON format matching this structure:
{
  "suggestions": [
    {
      "name": string,
      "category": string,
      "reason": string,
      "priority": "low" | "medium" | "high"
    }
  ]
}

Focus on practical, commonly purchased items that make sense with the current list.`

// BuildPrompt renders the instruction for the given items, kept in their given order
func BuildPrompt(items []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(items, ", "), strings.Join(Categories, ", "))
}
