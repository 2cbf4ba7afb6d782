package generator

// GenerationPrompt is the post generation template. Slots: topic, length
// description, language, tone, examples section.
const GenerationPrompt = `Generate a high-quality LinkedIn post with the following specifications:

1) Topic: %s
2) Length: %s
3) Language: %s
4) Tone: %s

Additional Guidelines:
- If Language is Hinglish, use a natural mix of Hindi and English words
- Include appropriate line breaks for readability
- Use emojis sparingly (2-3 per post)
- Make the post engaging and valuable for professionals
- Avoid overly promotional language

%s`

// ExamplesHeader opens the few-shot section.
const ExamplesHeader = "Here are some example posts for reference:\n\n"

// exampleBlock formats one example: number, text.
const exampleBlock = "Example %d:\n%s\n\n"
