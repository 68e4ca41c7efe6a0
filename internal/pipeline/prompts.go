package pipeline

import (
	"fmt"
	"strings"

	"animagen/internal/script"
)

const enhanceTemplate = `You are an expert at writing prompts for mathematical animation videos.
Rewrite the user's idea into a clear, detailed animation brief. Describe
the visual elements, their motion, and the order in which they appear.
Keep it under 150 words and return only the rewritten brief, no preamble.

User idea: %s`

const scriptTemplate = `You are an expert Manim developer. Write a complete Manim script for the
animation described below.

Requirements:
- Start with: from manim import *
- Define exactly one scene class named %s(Scene) with a construct method.
- Use only standard Manim community-edition objects and animations.
- The animation should run for roughly 10 to 15 seconds.
- Return only Python code, no explanations and no markdown fences.

Animation brief: %s`

func enhancePrompt(userPrompt string) string {
	return fmt.Sprintf(enhanceTemplate, strings.TrimSpace(userPrompt))
}

func scriptPrompt(brief string) string {
	return fmt.Sprintf(scriptTemplate, script.SceneName, strings.TrimSpace(brief))
}
