// Command visit serves the visit endpoint as a Lambda function.
package main

import (
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/function"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
)

func main() {
	function.Run("visit", func(h *handler.Handlers) handler.Func { return h.Visit })
}
