// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import "strings"

// node is a segment tree node. A node is terminal when route >= 0.
type node struct {
	segment  string
	children []*node
	param    *node
	catchAll *node
	route    int
}

func newNode(segment string) *node {
	return &node{segment: segment, route: -1}
}

func (n *node) child(segment string) *node {
	for _, c := range n.children {
		if c.segment == segment {
			return c
		}
	}
	return nil
}

// insert adds the pattern and marks its terminal node with the route index.
// The first route to claim a terminal keeps it.
func (n *node) insert(pattern string, idx int) {
	cur := n
	for _, seg := range splitPattern(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			if cur.catchAll == nil {
				cur.catchAll = newNode(seg)
			}
			cur = cur.catchAll
		case strings.HasPrefix(seg, ":"):
			if cur.param == nil {
				cur.param = newNode(seg)
			}
			cur = cur.param
		default:
			next := cur.child(seg)
			if next == nil {
				next = newNode(seg)
				cur.children = append(cur.children, next)
			}
			cur = next
		}
	}
	if cur.route < 0 {
		cur.route = idx
	}
}

// match walks the tree preferring static, then parameter, then catch-all
// children, backtracking when a branch dead-ends.
func (n *node) match(segs []string) int {
	if len(segs) == 0 {
		if n.route >= 0 {
			return n.route
		}
		// "/*rest" also matches its bare prefix
		if n.catchAll != nil && n.catchAll.route >= 0 {
			return n.catchAll.route
		}
		return -1
	}

	if c := n.child(segs[0]); c != nil {
		if idx := c.match(segs[1:]); idx >= 0 {
			return idx
		}
	}
	if n.param != nil {
		if idx := n.param.match(segs[1:]); idx >= 0 {
			return idx
		}
	}
	if n.catchAll != nil && n.catchAll.route >= 0 {
		return n.catchAll.route
	}
	return -1
}

func splitPattern(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// extractParams zips a route pattern with the request segments it matched.
func extractParams(pattern string, segs []string) map[string]string {
	parts := splitPattern(pattern)
	var params map[string]string
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "*"):
			if params == nil {
				params = make(map[string]string)
			}
			if i < len(segs) {
				params[part[1:]] = strings.Join(segs[i:], "/")
			} else {
				params[part[1:]] = ""
			}
			return params
		case strings.HasPrefix(part, ":"):
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:]] = segs[i]
		}
	}
	return params
}

// shape reduces a pattern to its matching shape so that "/:id" and "/:name"
// compare equal.
func shape(pattern string) string {
	parts := splitPattern(pattern)
	for i, p := range parts {
		switch {
		case strings.HasPrefix(p, ":"):
			parts[i] = ":"
		case strings.HasPrefix(p, "*"):
			parts[i] = "*"
		}
	}
	return "/" + strings.Join(parts, "/")
}
