package analysis

const keywordsPrompt = `Extract the most relevant keywords from the given text and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting,
or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

{
  "keywords": ["keyword", "..."]
}

Rules:
- Return between 3 and 10 keywords.
- Keywords must be lowercase, 1-3 words each.
- Include only terms that appear in or are clearly implied by the text. Do not hallucinate.
- If no keywords can be identified, return "keywords": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "The data protection officer reviewed the encryption policy for customer records."
Output:
{
  "keywords": ["data protection", "encryption policy", "customer records"]
}`

const topicsPrompt = `Identify the main topics of the given text and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting,
or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

{
  "topics": [
    {"name": "topic name", "confidence": 0.0, "description": "one sentence"}
  ]
}

Rules:
- Return at most 5 topics, most central first.
- Confidence is a number between 0 and 1 expressing how certain you are the topic is central to the text.
- The description is a single sentence explaining how the topic shows up in the text.
- Include only topics grounded in the text. Do not hallucinate.
- If no topics can be identified, return "topics": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "The quarterly report covers revenue growth and the new hiring plan."
Output:
{
  "topics": [
    {"name": "financial results", "confidence": 0.9, "description": "The text reports quarterly revenue growth."},
    {"name": "recruiting", "confidence": 0.7, "description": "A new hiring plan is announced."}
  ]
}`

const summaryPrompt = `Summarize the given text and return the summary as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting,
or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

{
  "summary": "..."
}

Rules:
- The summary is 2 to 3 plain sentences covering the main points.
- Stay strictly within what the text says. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`
