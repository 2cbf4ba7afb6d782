package preprocess

// ExtractionPrompt is the metadata extraction prompt. The only slot is the
// post text.
const ExtractionPrompt = `You are given a LinkedIn post. You need to extract number of lines, language of the post and tags.
1. Return a valid JSON. No preamble.
2. JSON object should have exactly three keys: line_count, language and tags.
3. tags is an array of text tags. Extract maximum two tags.
4. Language should be English or Hinglish (Hinglish means hindi + english)

Here is the actual post on which you need to perform this task:
%s`
