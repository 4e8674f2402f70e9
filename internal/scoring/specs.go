package scoring

const conformitySpec = `Respond with a JSON object matching this exact structure:

{
  "result": "conforme",
  "match_percent": 0,
  "violations": ["<violation1>", "<violation2>"],
  "note": "<summary>"
}

Field constraints:
- result: "conforme" when every labeling requirement is satisfied,
  "non_conforme" otherwise.
- match_percent: 0-100 estimate of how completely the text satisfies the
  designation's requirements.
- violations: one entry per missing requirement or forbidden element,
  quoting the relevant wording. Empty array when result is "conforme".
- note: one or two sentences summarizing the assessment.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Judge only the provided text`

const textualCompareSpec = `Respond with a JSON object matching this exact structure:

{
  "match_score": 0,
  "differences": ["<difference1>", "<difference2>"],
  "reasoning": "<explanation>"
}

Field constraints:
- match_score: 0-100 where 100 is an exact field-for-field match with the
  reference label.
- differences: one entry per concrete mismatch between the extracted text
  and a reference field, naming the field and both values. Empty array for
  an exact match.
- reasoning: brief explanation of the score.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Compare against the single reference label provided, not against general
  knowledge of olive oil producers`

const visualCompareSpec = `Respond with a JSON object matching this exact structure:

{
  "similarity": 0,
  "verdict": "different",
  "differences": ["<difference1>", "<difference2>"],
  "explanation": "<explanation>"
}

Field constraints:
- similarity: 0-100 visual similarity between the two label images.
- verdict: exactly one of "identical", "similar", "different",
  "counterfeit".
- differences: one entry per concrete visual difference (layout,
  typography, colors, seals, logos). Empty array for identical labels.
- explanation: brief reasoning behind the verdict.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- The first image is the candidate, the second is the official reference`
