package scheduler

import "testing"

func TestValidateRejectsDuplicateType(t *testing.T) {
	task := Task{Name: "dup", Params: []Param{
		{Type: "Buffer", Access: AccessRead},
		{Type: "Buffer", Access: AccessWrite},
	}}
	if err := task.Validate(); err == nil {
		t.Fatalf("expected error for duplicate type")
	}
}

func TestValidateRejectsReservedWithExtraParams(t *testing.T) {
	task := Task{Name: "res", Params: []Param{
		{Type: "Buffer", Reserved: true},
		{Type: "Config", Access: AccessRead},
	}}
	if err := task.Validate(); err == nil {
		t.Fatalf("expected error for reserved task with extra params")
	}
}

func TestPartitionGroupsReadsTogether(t *testing.T) {
	tasks := []Task{
		{Name: "a", Params: []Param{{Type: "Buffer", Access: AccessRead}}},
		{Name: "b", Params: []Param{{Type: "Buffer", Access: AccessRead}}},
	}
	groups, err := Partition(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected both reads in one group, got %v", groups)
	}
}

func TestPartitionSeparatesWrites(t *testing.T) {
	tasks := []Task{
		{Name: "a", Params: []Param{{Type: "Buffer", Access: AccessWrite}}},
		{Name: "b", Params: []Param{{Type: "Buffer", Access: AccessRead}}},
	}
	groups, err := Partition(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups for write+read conflict, got %d", len(groups))
	}
}

func TestPartitionReservedIsSingleton(t *testing.T) {
	tasks := []Task{
		{Name: "solo", Params: []Param{{Type: "Config", Reserved: true}}},
		{Name: "other", Params: []Param{{Type: "Buffer", Access: AccessRead}}},
	}
	groups, err := Partition(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, g := range groups {
		if len(g) == 1 && g[0].Name == "solo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected reserved task in its own group: %v", groups)
	}
}

func TestRunExecutesAllTasks(t *testing.T) {
	res := NewResources()
	s := New(res)
	count := 0
	var mu chan struct{}
	mu = make(chan struct{}, 1)
	mu <- struct{}{}

	tasks := []Task{
		{Name: "a", Params: []Param{{Type: "X", Access: AccessRead}}, Run: func() {
			<-mu
			count++
			mu <- struct{}{}
		}},
		{Name: "b", Params: []Param{{Type: "X", Access: AccessRead}}, Run: func() {
			<-mu
			count++
			mu <- struct{}{}
		}},
	}
	if err := s.Run(tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
