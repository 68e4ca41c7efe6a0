// Package script normalizes generated Manim scripts before rendering.
// Generated code routinely arrives wrapped in markdown fences or
// missing the boilerplate the renderer needs; Sanitize repairs the
// common cases and FallbackScene covers total generation failure.
package script

import (
	"fmt"
	"strings"
)

// SceneName is the class the renderer is asked to render. Sanitize
// guarantees a class with this name exists.
const SceneName = "GeneratedScene"

const manimImport = "from manim import *"

// FallbackScene returns the deterministic script used when generation
// fails: the pipeline always has something to render.
func FallbackScene() string {
	return `from manim import *

class GeneratedScene(Scene):
    def construct(self):
        title = Text("Prompt-to-Video Generator", font_size=48)
        title.set_color(BLUE)

        subtitle = Text("Animation Generated Successfully!", font_size=24)
        subtitle.set_color(GREEN)
        subtitle.next_to(title, DOWN, buff=0.5)

        self.play(Write(title))
        self.wait(1)
        self.play(Write(subtitle))
        self.wait(2)

        circle = Circle(radius=2, color=YELLOW)
        circle.next_to(subtitle, DOWN, buff=1)

        self.play(Create(circle))
        self.play(circle.animate.set_color(RED))
        self.wait(1)
`
}

// MinimalScene returns the default scene appended when the generated
// code contains no usable scene class.
func minimalScene() string {
	return fmt.Sprintf(`

class %s(Scene):
    def construct(self):
        text = Text("Generated Animation")
        text.set_color(BLUE)
        self.play(Write(text))
        self.wait(2)
`, SceneName)
}

// Sanitize repairs common defects in generated Manim code: markdown
// fences left by the model, a missing import, a scene class that does
// not inherit from Scene, or no scene class at all.
func Sanitize(code string) string {
	code = stripFences(code)
	code = strings.TrimSpace(code)

	if !strings.Contains(code, manimImport) {
		code = manimImport + "\n\n" + code
	}

	if strings.Contains(code, "class "+SceneName+":") {
		code = strings.Replace(code, "class "+SceneName+":", "class "+SceneName+"(Scene):", 1)
	}

	if !strings.Contains(code, "class "+SceneName) {
		code += minimalScene()
	}

	return code
}

func stripFences(code string) string {
	code = strings.ReplaceAll(code, "```python", "")
	code = strings.ReplaceAll(code, "```", "")
	return code
}
