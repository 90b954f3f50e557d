package scene

import "fmt"

// Surface is the drawing capability a backend provides.
type Surface interface {
	Measurer
	BeginPage(width, height float64) error
	DrawRect(Rect)
	DrawPath(Path)
	DrawText(Text)
	DrawImage(Image)
	EndPage() error
}

// Replay draws every page of doc onto s in order.
func Replay(doc Document, s Surface) error {
	if len(doc.Pages) == 0 {
		return fmt.Errorf("document %q has no pages", doc.Title)
	}
	for i, p := range doc.Pages {
		if err := s.BeginPage(p.Width, p.Height); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		for _, op := range p.Ops {
			switch o := op.(type) {
			case Rect:
				s.DrawRect(o)
			case Path:
				s.DrawPath(o)
			case Text:
				s.DrawText(o)
			case Image:
				s.DrawImage(o)
			}
		}
		if err := s.EndPage(); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return nil
}
