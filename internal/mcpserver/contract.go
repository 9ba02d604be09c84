package mcpserver

// TagFormatURI identifies the tag document format resource.
const TagFormatURI = "autotag://tag-format"

// TagFormat describes how tag documents are laid out, so LLM consumers
// can read them and edit them without breaking the managed region.
const TagFormat = `# Auto-tag Document Format

Every tag document lives at ` + "`" + `keywords/<tag>.md` + "`" + ` and looks like:

` + "```" + `markdown
# Auto-tag: <tag>

<!-- start auto-tags -->
[[Document One]]
[[Document Two]]
<!-- end auto-tags -->
` + "```" + `

## Rules

1. **The region between the markers is managed.** Each line ` + "`" + `[[<title>]]` + "`" + `
   is a backlink to the document whose file name (without ` + "`" + `.md` + "`" + `) is
   ` + "`" + `<title>` + "`" + `. A title appears at most once.
2. **Everything outside the region is preserved verbatim**, including the header.
   Add notes about a tag above the start marker or below the end marker.
3. **New backlinks are inserted directly above the end marker.**
4. **A tag document exists only while at least one backlink remains.** When the last
   backlink is removed the file is deleted.
5. **Both markers are required.** A tag document missing either marker is rejected
   and never rewritten.
6. **Tag identifiers** are extracted keyword phrases with punctuation removed and
   spaces replaced by hyphens (e.g. ` + "`" + `machine-learning` + "`" + `).
7. **Snapshots** of each document's last applied tags are kept in
   ` + "`" + `keywords/.meta/<title>.kwds` + "`" + `, one tag per line. Do not edit them by hand;
   run ` + "`" + `reconcile` + "`" + ` after manual edits to tag documents.
`
