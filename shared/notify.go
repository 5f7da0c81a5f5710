package shared

// IChangeNotifier is the sink invoked after every successful write so
// observers (e.g. a displayed list) know to refresh. Implemented in logic;
// consumed by the dal so it cannot live there.
type IChangeNotifier interface {
	// Subscribe registers an observer for change notifications.
	Subscribe(fn func(uri string))
	// PublishChange tells every observer that rows behind uri changed.
	PublishChange(uri string)
}
