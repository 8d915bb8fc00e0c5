package tasks

import "github.com/lysyi3m/getpods/app/feed"

// Partition splits new items into those downloaded without asking and those
// that need confirmation, keeping discovery order in both.
func Partition(items []*feed.Item) (download, query []*feed.Item) {
	for _, item := range items {
		if item.AutoDownload() {
			download = append(download, item)
		} else {
			query = append(query, item)
		}
	}
	return download, query
}
