package vdom

import (
	"fmt"

	"github.com/vango-dev/patchwork/pkg/reactive"
)

// updateChildren reconciles two children lists of parentElm with four
// moving pointers, falling back to a key lookup for genuine reorders.
// Old slots patched through the key map are set to nil.
func (p *Patcher) updateChildren(parentElm Node, oldCh, newCh []*VNode, queue *[]*VNode, removeOnly bool) {
	oldStartIdx, newStartIdx := 0, 0
	oldEndIdx := len(oldCh) - 1
	newEndIdx := len(newCh) - 1
	oldStart, oldEnd := at(oldCh, 0), at(oldCh, oldEndIdx)
	newStart, newEnd := at(newCh, 0), at(newCh, newEndIdx)
	var oldKeyToIdx map[string]int
	canMove := !removeOnly

	if reactive.DevMode {
		p.checkDuplicateKeys(newCh)
	}

	for oldStartIdx <= oldEndIdx && newStartIdx <= newEndIdx {
		switch {
		case oldStart == nil:
			oldStartIdx++
			oldStart = at(oldCh, oldStartIdx)
		case oldEnd == nil:
			oldEndIdx--
			oldEnd = at(oldCh, oldEndIdx)
		case SameVNode(oldStart, newStart):
			p.patchVnode(oldStart, newStart, queue, newCh, newStartIdx, false)
			oldStartIdx++
			newStartIdx++
			oldStart, newStart = at(oldCh, oldStartIdx), at(newCh, newStartIdx)
		case SameVNode(oldEnd, newEnd):
			p.patchVnode(oldEnd, newEnd, queue, newCh, newEndIdx, false)
			oldEndIdx--
			newEndIdx--
			oldEnd, newEnd = at(oldCh, oldEndIdx), at(newCh, newEndIdx)
		case SameVNode(oldStart, newEnd):
			// moved right
			p.patchVnode(oldStart, newEnd, queue, newCh, newEndIdx, false)
			if canMove {
				p.ops.InsertBefore(parentElm, oldStart.Elm, p.ops.NextSibling(oldEnd.Elm))
			}
			oldStartIdx++
			newEndIdx--
			oldStart, newEnd = at(oldCh, oldStartIdx), at(newCh, newEndIdx)
		case SameVNode(oldEnd, newStart):
			// moved left
			p.patchVnode(oldEnd, newStart, queue, newCh, newStartIdx, false)
			if canMove {
				p.ops.InsertBefore(parentElm, oldEnd.Elm, oldStart.Elm)
			}
			oldEndIdx--
			newStartIdx++
			oldEnd, newStart = at(oldCh, oldEndIdx), at(newCh, newStartIdx)
		default:
			if oldKeyToIdx == nil {
				oldKeyToIdx = createKeyToOldIdx(oldCh, oldStartIdx, oldEndIdx)
			}
			idxInOld := -1
			if newStart.Key != "" {
				if i, ok := oldKeyToIdx[newStart.Key]; ok {
					idxInOld = i
				}
			} else {
				idxInOld = findIdxInOld(newStart, oldCh, oldStartIdx, oldEndIdx)
			}
			switch {
			case idxInOld < 0 || oldCh[idxInOld] == nil:
				p.createElm(newStart, queue, parentElm, oldStart.Elm, false, newCh, newStartIdx)
			case SameVNode(oldCh[idxInOld], newStart):
				toMove := oldCh[idxInOld]
				p.patchVnode(toMove, newStart, queue, newCh, newStartIdx, false)
				oldCh[idxInOld] = nil
				if canMove {
					p.ops.InsertBefore(parentElm, toMove.Elm, oldStart.Elm)
				}
			default:
				// same key but a different element
				p.createElm(newStart, queue, parentElm, oldStart.Elm, false, newCh, newStartIdx)
			}
			newStartIdx++
			newStart = at(newCh, newStartIdx)
		}
	}

	if oldStartIdx > oldEndIdx {
		var refElm Node
		if next := at(newCh, newEndIdx+1); next != nil {
			refElm = next.Elm
		}
		p.addVnodes(parentElm, refElm, newCh, newStartIdx, newEndIdx, queue)
	} else if newStartIdx > newEndIdx {
		p.removeVnodes(oldCh, oldStartIdx, oldEndIdx)
	}
}

func at(list []*VNode, i int) *VNode {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

func createKeyToOldIdx(children []*VNode, begin, end int) map[string]int {
	m := make(map[string]int)
	for i := begin; i <= end; i++ {
		if c := children[i]; c != nil && c.Key != "" {
			m[c.Key] = i
		}
	}
	return m
}

func findIdxInOld(node *VNode, oldCh []*VNode, start, end int) int {
	for i := start; i < end; i++ {
		if c := oldCh[i]; c != nil && SameVNode(node, c) {
			return i
		}
	}
	return -1
}

// checkDuplicateKeys reports keys used twice among siblings.
func (p *Patcher) checkDuplicateKeys(children []*VNode) {
	seen := make(map[string]bool)
	for _, c := range children {
		if c == nil || c.Key == "" {
			continue
		}
		if seen[c.Key] {
			p.warn("E200", c.Context, fmt.Sprintf("Duplicate keys detected: '%s'. This may cause an update error.", c.Key))
			continue
		}
		seen[c.Key] = true
	}
}
