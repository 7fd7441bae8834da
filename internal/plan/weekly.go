package plan

import (
	"encoding/json"
	"fmt"
)

// WeeklyPlan maps weekday keys to ordered plan items. Item PlanIDs are unique
// across the entire plan, not just within a day.
type WeeklyPlan struct {
	days map[Weekday][]Item
}

// NewWeeklyPlan returns an empty plan.
func NewWeeklyPlan() *WeeklyPlan {
	return &WeeklyPlan{days: make(map[Weekday][]Item)}
}

// Day returns the ordered items for a weekday. The returned slice is a copy.
func (p *WeeklyPlan) Day(day Weekday) []Item {
	if p == nil || p.days == nil {
		return nil
	}
	items := p.days[day]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Len reports the number of items across the whole week.
func (p *WeeklyPlan) Len() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, items := range p.days {
		total += len(items)
	}
	return total
}

// Add appends an item to a weekday's list. It rejects invalid weekdays and
// duplicate plan ids.
func (p *WeeklyPlan) Add(day Weekday, item Item) error {
	if !day.Valid() {
		return fmt.Errorf("invalid weekday %d", int(day))
	}
	if item.PlanID == "" {
		return fmt.Errorf("plan item has no id")
	}
	if _, _, ok := p.Find(item.PlanID); ok {
		return fmt.Errorf("plan id %s already present", item.PlanID)
	}
	if p.days == nil {
		p.days = make(map[Weekday][]Item)
	}
	p.days[day] = append(p.days[day], item)
	return nil
}

// Remove deletes the item with the given plan id, reporting whether it existed.
func (p *WeeklyPlan) Remove(planID string) bool {
	if p == nil {
		return false
	}
	for day, items := range p.days {
		for i, item := range items {
			if item.PlanID == planID {
				p.days[day] = append(items[:i:i], items[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Find locates an item by plan id.
func (p *WeeklyPlan) Find(planID string) (Weekday, Item, bool) {
	if p == nil {
		return 0, Item{}, false
	}
	for day, items := range p.days {
		for _, item := range items {
			if item.PlanID == planID {
				return day, item, true
			}
		}
	}
	return 0, Item{}, false
}

// Update replaces the stored item carrying the same plan id in place.
func (p *WeeklyPlan) Update(updated Item) bool {
	if p == nil {
		return false
	}
	for day, items := range p.days {
		for i, item := range items {
			if item.PlanID == updated.PlanID {
				p.days[day][i] = updated
				return true
			}
		}
	}
	return false
}

// Move repositions an item within its weekday's list. Index is clamped.
func (p *WeeklyPlan) Move(planID string, index int) bool {
	if p == nil {
		return false
	}
	for day, items := range p.days {
		for i, item := range items {
			if item.PlanID != planID {
				continue
			}
			rest := append(items[:i:i], items[i+1:]...)
			if index < 0 {
				index = 0
			}
			if index > len(rest) {
				index = len(rest)
			}
			out := make([]Item, 0, len(items))
			out = append(out, rest[:index]...)
			out = append(out, item)
			out = append(out, rest[index:]...)
			p.days[day] = out
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the plan.
func (p *WeeklyPlan) Clone() *WeeklyPlan {
	clone := NewWeeklyPlan()
	if p == nil {
		return clone
	}
	for day, items := range p.days {
		copied := make([]Item, len(items))
		copy(copied, items)
		clone.days[day] = copied
	}
	return clone
}

// Equal compares two plans structurally.
func (p *WeeklyPlan) Equal(other *WeeklyPlan) bool {
	left, err := p.MarshalJSON()
	if err != nil {
		return false
	}
	right, err := other.MarshalJSON()
	if err != nil {
		return false
	}
	return string(left) == string(right)
}

// MarshalJSON encodes the plan as a weekday-name keyed document, emitting all
// seven days so the remote document shape is stable.
func (p *WeeklyPlan) MarshalJSON() ([]byte, error) {
	doc := make(map[string][]Item, 7)
	for _, day := range Weekdays() {
		items := []Item{}
		if p != nil {
			items = append(items, p.days[day]...)
		}
		doc[day.String()] = items
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a weekday-name keyed document. Unknown keys are
// ignored so older documents stay readable.
func (p *WeeklyPlan) UnmarshalJSON(data []byte) error {
	var doc map[string][]Item
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	p.days = make(map[Weekday][]Item)
	for _, day := range Weekdays() {
		if items, ok := doc[day.String()]; ok && len(items) > 0 {
			p.days[day] = items
		}
	}
	return nil
}
