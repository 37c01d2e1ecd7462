package ai

// metadataPrompt asks for statement-level metadata as a single JSON object.
const metadataPrompt = `You are a financial statement parser for PDF bank statements.

Task:
- Read the attached bank statement and extract its account-level metadata.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a single JSON object.

The object must have these fields:
- "bank_name": string
- "account_number": string
- "account_type": string or null (e.g. "Current Account", "Facility Account", "Overdraft")
- "currency": string, ISO 4217 code (e.g. "SAR", "USD")
- "starting_balance": number (the opening balance for the statement period)
- "ending_balance": number (the closing balance; negative when the account is overdrawn)
- "period_start": string, ISO format "YYYY-MM-DD"
- "period_end": string, ISO format "YYYY-MM-DD"
- "tenor_months": number or null (loan tenor, facility accounts only)
- "interest_rate": number or null (annual rate as a percentage, facility accounts only)
- "available_limit": number or null (undrawn facility limit, facility accounts only)

Rules:
- If a field cannot be determined from the document, set it to null.
- Keep balances signed exactly as shown on the statement.

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use ` + "```json" + ` or any Markdown.
Output must begin with "{" and end with "}".
`

// transactionsPromptFmt asks for the transactions on a page range as a JSON
// array. The two verb arguments are the first and last page (1-based,
// inclusive).
const transactionsPromptFmt = `You are a financial statement parser for PDF bank statements.

Task:
- Parse ALL transactions that appear on pages %d to %d (inclusive) of the attached statement. Ignore every other page.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a JSON array of objects. If the pages carry no transactions, output [].

Each object must have these fields:
- "date": string, ISO format "YYYY-MM-DD"
- "description": string (the transaction narrative as printed)
- "entity_name": string (the counterparty name if identifiable, otherwise "")
- "amount": number (positive for money IN, negative for money OUT)
- "currency": string, ISO 4217 code
- "category": string or null (e.g. "salary", "rent", "utilities", "supplier payment", "customer receipt", "bank fees", "transfer")

Rules:
- If the statement has separate "credit" / "debit" columns, convert to a single signed "amount".
- Do not invent transactions; only include rows printed on the requested pages.
- If the counterparty cannot be determined, set "entity_name" to "".

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use ` + "```json" + ` or any Markdown.
Output must begin with "[" and end with "]".
`
