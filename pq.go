package routeplanner

import "container/heap"

// priorityQueueItem is a frontier entry. Node is an index into the search arena.
type priorityQueueItem struct {
	Node         int32
	FCost        float64
	Sequence     uint64
	IndexInQueue int
}

// priorityQueue orders items by FCost, then by insertion Sequence so equal-cost nodes
// come out in the order they were discovered.
type priorityQueue []*priorityQueueItem

func (queue priorityQueue) Len() int { return len(queue) }
func (queue priorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue priorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *priorityQueue) Push(x any) {
	item := x.(*priorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *priorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}

// frontier is the open set of a search.
type frontier struct {
	queue    priorityQueue
	sequence uint64
}

func (f *frontier) Len() int { return f.queue.Len() }

// push inserts node with the given f-cost and returns its queue item.
func (f *frontier) push(node int32, fCost float64) *priorityQueueItem {
	f.sequence++
	item := &priorityQueueItem{Node: node, FCost: fCost, Sequence: f.sequence}
	heap.Push(&f.queue, item)
	return item
}

// update lowers the f-cost of an item already in the queue.
func (f *frontier) update(item *priorityQueueItem, fCost float64) {
	item.FCost = fCost
	heap.Fix(&f.queue, item.IndexInQueue)
}

// popMin removes and returns the item with the lowest f-cost.
func (f *frontier) popMin() (*priorityQueueItem, error) {
	if f.queue.Len() == 0 {
		return nil, ErrEmptyFrontier
	}
	return heap.Pop(&f.queue).(*priorityQueueItem), nil
}
