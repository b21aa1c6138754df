package selfplay

import (
	"github.com/kestrel-engine/kestrel/eval"
	"github.com/kestrel-engine/kestrel/tt"
)

func newTestTable() *tt.Table {
	return tt.New(1)
}

func newTestEvalStore() *eval.Store {
	return eval.NewStore(nil)
}
