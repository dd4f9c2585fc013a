// Command generate serves the generate endpoint as a Lambda function. It
// never touches the ledger, so no store is opened.
package main

import (
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/bootstrap"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/function"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
)

func main() {
	function.Run("generate", func(h *handler.Handlers) handler.Func { return h.Generate }, bootstrap.WithoutStore())
}
