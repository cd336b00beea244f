package mcpserver

// InputFormatContract describes the delimited Zettel document format that
// convert_document expects, for LLM consumers that assemble input documents.
const InputFormatContract = `# Zettelport Input Format

A zettelport input document is a single flat UTF-8 text file holding any
number of Zettel records.

## Structure

Each record starts with the title marker and carries its body after the
content marker:

` + "```" + `text
**Title:** How to brew coffee
**Content:**
Grind fresh. See [[Water temperature]] for details.
tags:: #coffee
---
Anything after a --- separator is commentary and is discarded.
` + "```" + `

## Rules

1. **Title marker** (` + "`" + `**Title:**` + "`" + ` by default) begins every record. Text
   before the first marker is preamble and is ignored.
2. **Content marker** (` + "`" + `**Content:**` + "`" + ` by default) separates the title
   from the body. A record without it is skipped with a warning.
3. **Wikilinks** reference other records by their *original* title:
   ` + "`" + `[[How to brew coffee]]` + "`" + `. The converter rewrites them to the
   filesystem-safe titles used on disk.
4. **Titles may contain any characters.** Colons become " -", slashes
   become " or ", and characters illegal in filenames are removed.
5. **tags:: lines** survive verbatim; every other ` + "`" + `#token` + "`" + ` is escaped so
   the destination outliner does not auto-tag it.
6. **Everything from the first --- onward** within a body is discarded, as
   are code-fence lines.
`
