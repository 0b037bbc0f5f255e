package mcpserver

// SearchSyntax documents how search_records interprets a query.
const SearchSyntax = `# Search Syntax

A query is split on whitespace. Every resulting term must match a record;
terms are matched as word prefixes first and as case-insensitive substrings
of title, content, url, category, tags and metadata when few prefix hits exist.

## Plain words

Punctuation is stripped and the word is lowercased. Words shorter than two
characters are ignored.

## Dates

Dates stored anywhere in a record's metadata are indexed in many shapes
(2025, 2025-12, 202512, 2025-12-15, 20251215, december, dec, 12-15, dec15,
december-15, 15), so the following query forms all find them:

| Query          | Meaning                                  |
|----------------|------------------------------------------|
| ` + "`2025`" + `         | the year                                 |
| ` + "`2025 12`" + `      | year and month                           |
| ` + "`2025 12 15`" + `   | year, month and day                      |
| ` + "`2025-12-15`" + `   | ISO date; ` + "`/`" + ` works as a separator too |
| ` + "`dec`" + `          | month name, full or abbreviated          |
| ` + "`dec 15`" + `       | month and day                            |
| ` + "`dec 2025`" + `     | month and year                           |
| ` + "`dec 2025 15`" + `  | month, year and day                      |

## Results

At most 25 records are returned, best full-text matches first, then the most
recently updated substring matches.
`
