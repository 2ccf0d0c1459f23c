package scene

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opReparent
	opAddBehavior
	opRemoveBehavior
)

type deferredOp struct {
	kind     opKind
	node     *Node
	parent   *Node
	behavior Behavior
}
