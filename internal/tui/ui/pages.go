package ui

import (
	"slices"

	"github.com/rivo/tview"
)

// Pages keeps a navigation stack on top of tview.Pages. Only the top page
// is visible; onChange receives a copy of the stack after every change.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	p.hideTop()
	p.stack = append(p.stack, name)
	p.showTop()
}

// Pop drops the top page and returns its name, or "" on an empty stack.
func (p *Pages) Pop() string {
	top := p.Current()
	if top == "" {
		return ""
	}
	p.hideTop()
	p.stack = p.stack[:len(p.stack)-1]
	p.showTop()
	return top
}

// Replace swaps the top page for name.
func (p *Pages) Replace(name string) {
	if len(p.stack) == 0 {
		p.Push(name)
		return
	}
	p.hideTop()
	p.stack[len(p.stack)-1] = name
	p.showTop()
}

// Reset leaves name as the only page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = append(p.stack[:0], name)
	p.showTop()
}

func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

func (p *Pages) Contains(name string) bool { return slices.Contains(p.stack, name) }
func (p *Pages) Depth() int                { return len(p.stack) }
func (p *Pages) Stack() []string           { return slices.Clone(p.stack) }

func (p *Pages) hideTop() {
	if top := p.Current(); top != "" {
		p.HidePage(top)
	}
}

func (p *Pages) showTop() {
	if top := p.Current(); top != "" {
		p.ShowPage(top)
		p.SendToFront(top)
	}
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
