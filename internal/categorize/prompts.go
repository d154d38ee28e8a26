package categorize

const batchPromptFormat = `You are reviewing %d PR and marketing emails. For each email identify:
1. Up to three topical PR categories (for example Technology, Travel & Hospitality, Automotive, Healthcare)
2. The brands or companies being promoted (never the PR agency sending the email)
3. A confidence between 0 and 1 for every category

%s

Respond only with a JSON array holding one object per email:
[
  {
    "email_index": 1,
    "categories": [{"name": "Category", "confidence": 0.9}],
    "brands": ["Brand"]
  }
]

Use the email number shown in brackets as email_index and return exactly %d objects.`

const discoverPromptFormat = `Below are sample PR and marketing emails.

%s

List 10 to 20 distinct industry or topic categories that would be useful for organizing the senders, such as "Technology", "Travel & Hospitality" or "Consumer Electronics".

Respond only with a JSON array of category names, for example:
["Technology", "Travel & Hospitality", "Consumer Electronics"]`
