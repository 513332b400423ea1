package mcpserver

// NoteFormatURI is the resource URI of NoteFormatContract.
const NoteFormatURI = "marknote://note-format"

// NoteFormatContract describes the markdown conventions the note parser
// understands. LLM clients should read it before saving notes.
const NoteFormatContract = `# Marknote Note Format

Notes are plain UTF-8 Markdown. Nothing is mandatory, but the following
conventions are recognised when a note is saved.

## Title

The title of a saved note is chosen in this order:

1. the ` + "`title`" + ` argument of ` + "`save_note`" + `, when not blank;
2. the ` + "`title`" + ` field of YAML frontmatter;
3. the first level-one heading (` + "`# Heading`" + `);
4. ` + "`Untitled Notes - YYYY-MM-DD HH:MM`" + `.

## Frontmatter

Optional YAML between ` + "`---`" + ` fences at the very top of the note:

` + "```" + `markdown
---
title: Weekly standup
tags: [meeting-notes, project-x]
---
` + "```" + `

` + "`tags`" + ` may be a YAML list or a comma-separated string. Malformed
frontmatter is kept as part of the body.

## Tags

Inline tags start with ` + "`#`" + ` followed by a letter, e.g. ` + "`#todo`" + ` or
` + "`#project/alpha`" + `. They are merged with frontmatter tags, duplicates removed.

## Summaries

` + "`summarize_notes`" + ` needs at least 10 words. Sentences are split on
` + "`.`" + `, ` + "`!`" + ` and ` + "`?`" + `; short bullet fragments summarise poorly, so
write action items as full sentences.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
tags: [meeting-notes]
---

# Weekly standup

The main goal is to ship the release by Friday. #release

- Alice will review the design document.
- Bob will update the roadmap.
` + "```" + `
`
