// Package insights derives cross-session analytics from the session catalog:
// usage statistics and a (week, weekday) activity heatmap. Sessions without a
// description are excluded from all analytics, and any single unreadable
// record degrades the result instead of failing the pass.
package insights
