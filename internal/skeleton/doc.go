// Package skeleton models the in-progress transaction shared by one
// composition run: the five transaction areas plus the merge rules that keep
// them consistent while independently authored fragments append into them.
package skeleton
