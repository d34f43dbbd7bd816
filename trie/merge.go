package trie

// Merge produces a fresh trie whose root's payload bag is the
// concatenation of t1 and t2's root bags, and whose children are
// recursively merged. Neither input is mutated; where one side's
// child is absent, the other's subtree is cloned verbatim rather than
// aliased, so the result owns every node it reaches.
func Merge[T any](t1, t2 *Node[T]) *Node[T] {
	if t1 == nil {
		return clone(t2)
	}
	if t2 == nil {
		return clone(t1)
	}
	return &Node[T]{
		Data:  concatData(t1.Data, t2.Data),
		Left:  Merge(t1.Left, t2.Left),
		Right: Merge(t1.Right, t2.Right),
	}
}

// Extend consumes t2 into t1 in place: t1's payload bag gains t2's
// root bag, and each of t1's subtrees is extended by the matching
// subtree of t2, except where t1 has no corresponding child, in which
// case t2's subtree is spliced in by pointer with no allocation. t2
// must not be used after Extend returns: its subtrees may now be
// owned by t1.
func Extend[T any](t1, t2 *Node[T]) {
	if t2 == nil {
		return
	}
	t1.Data = append(t1.Data, t2.Data...)

	if t1.Left == nil {
		t1.Left = t2.Left
	} else {
		Extend(t1.Left, t2.Left)
	}

	if t1.Right == nil {
		t1.Right = t2.Right
	} else {
		Extend(t1.Right, t2.Right)
	}
}

func clone[T any](n *Node[T]) *Node[T] {
	if n == nil {
		return nil
	}
	return &Node[T]{
		Data:  append([]T(nil), n.Data...),
		Left:  clone(n.Left),
		Right: clone(n.Right),
	}
}

func concatData[T any](a, b []T) []T {
	if len(a) == 0 {
		return append([]T(nil), b...)
	}
	out := append([]T(nil), a...)
	return append(out, b...)
}
