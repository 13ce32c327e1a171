package cart

// Reconcile decides the authoritative cart when a session authenticates.
// A remote cart, even an empty one, fully replaces the local cart; when no
// remote cart exists the visible cart resets to empty. Local-only additions
// made while anonymous are discarded either way: authentication never
// carries the anonymous cart forward.
func Reconcile(local, remote Items, remoteExists bool) Items {
	if !remoteExists || remote == nil {
		return Items{}
	}
	return remote.Clone()
}
