// Package review implements the review workflow on top of the item store and
// the scheduling rules in domain/srs.
//
// Every state-changing operation checks ownership and writes inside the same
// transaction. Rate locks the item row so concurrent ratings of one item are
// applied one after the other. The rating histogram is recorded after commit
// and a failure there never fails the rating.
package review
