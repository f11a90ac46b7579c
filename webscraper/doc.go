// Package webscraper is an MCP server that turns web pages into text for the
// web-search backend.
//
// It exposes one tool, analyze_website, which takes {"url", "selectors"} and
// returns {"title", "url", "content", "raw_content"}. Pages are sanitized
// with bluemonday before their text is extracted with goquery, so scripts,
// styles and other active content never reach the output.
//
// Serve it on stdio for a spawned child process, or over streamable HTTP:
//
//	server := webscraper.NewMCPServer(webscraper.NewScraper())
//	err := webscraper.RunHTTP(ctx, server, ":8931")
package webscraper
