// Package tool adapts research capabilities to the langchaingo tools.Tool
// interface so an agent can drive them.
//
// WebResearch runs one bounded research loop iteration per call:
//
//	sess, err := research.NewSession(cfg)
//	if err != nil {
//		return err
//	}
//	researchTool, _ := tool.NewWebResearch(sess.Controller, tool.WithSourceList(true))
//
//	agentTools := []tools.Tool{researchTool, tool.WebFetchTool{}}
//
// Once the session's search budget is spent, WebResearch answers with
// research.ExhaustedMessage instead of searching.
//
// WebFetch downloads a single page and returns its readable text.
package tool
