package feed

// SeenSet is the part of the seen store the reconciler needs.
type SeenSet interface {
	Contains(id string) bool
	Mark(id string)
}

type Reconciler struct {
	store SeenSet
}

func NewReconciler(store SeenSet) *Reconciler {
	return &Reconciler{store: store}
}

// Surfaced collects the identifiers already handed out during one run, across
// all feeds.
type Surfaced map[string]struct{}

func (s Surfaced) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

type Result struct {
	New       []*Item
	Truncated int // new items beyond the cap, marked seen without being surfaced
}

// Run walks the items in feed order and returns the ones not yet seen. With
// limit > 0 at most limit items are returned and every further new item is
// marked seen immediately. The caller persists the store when Truncated > 0.
//
// Items already in surfaced are skipped before they count toward the limit,
// and every new item is added to it. A nil surfaced only dedupes within
// doc.
func (r *Reconciler) Run(doc *Document, config *Config, limit int, surfaced Surfaced) Result {
	var result Result
	if surfaced == nil {
		surfaced = make(Surfaced)
	}

	for _, raw := range doc.Items {
		if r.store.Contains(raw.GUID) || surfaced.Contains(raw.GUID) {
			continue
		}
		surfaced[raw.GUID] = struct{}{}

		if limit == 0 || len(result.New) < limit {
			result.New = append(result.New, NewItem(raw, config, doc.Title))
			continue
		}

		r.store.Mark(raw.GUID)
		result.Truncated++
	}

	return result
}
