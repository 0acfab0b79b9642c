// ABOUTME: Tests for the group catalog operations
// ABOUTME: Verifies enumeration, add/remove/rename, and catalog error paths

package codetree

import (
	"errors"
	"reflect"
	"testing"
)

func TestCodesInGroup(t *testing.T) {
	tree := testTree()
	tree.Categories[0].AddExclude("bleeding")

	codes, err := tree.CodesInGroup("bleeding")
	if err != nil {
		t.Fatalf("CodesInGroup failed: %v", err)
	}
	want := []Code{{Name: "K92.2", Docs: "Gastrointestinal haemorrhage (GI bleed)"}}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("got %v, want %v", codes, want)
	}

	// The untouched group still lists everything
	codes, err = tree.CodesInGroup("diabetes")
	if err != nil {
		t.Fatalf("CodesInGroup failed: %v", err)
	}
	if len(codes) != 3 {
		t.Errorf("diabetes should list 3 codes, got %d", len(codes))
	}
}

func TestCodesInGroupUnknown(t *testing.T) {
	tree := testTree()
	if _, err := tree.CodesInGroup("surgery"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("got %v, want ErrUnknownGroup", err)
	}
}

func TestAddGroup(t *testing.T) {
	tree := testTree()
	out, err := AddGroup(tree, "anaemia")
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	want := []string{"anaemia", "bleeding", "diabetes"}
	if !reflect.DeepEqual(out.Groups, want) {
		t.Errorf("catalog: got %v, want %v", out.Groups, want)
	}
	// New groups default to full membership
	codes, err := out.CodesInGroup("anaemia")
	if err != nil {
		t.Fatalf("CodesInGroup failed: %v", err)
	}
	if len(codes) != 3 {
		t.Errorf("new group should contain every leaf, got %d", len(codes))
	}
	// Input tree untouched
	if len(tree.Groups) != 2 {
		t.Errorf("input catalog changed: %v", tree.Groups)
	}

	if _, err := AddGroup(out, "bleeding"); !errors.Is(err, ErrGroupExists) {
		t.Errorf("duplicate add: got %v, want ErrGroupExists", err)
	}
}

func TestRemoveGroup(t *testing.T) {
	tree := testTree()
	tree.Categories[0].AddExclude("bleeding")
	tree.Categories[1].Categories[0].AddExclude("diabetes")

	out, err := RemoveGroup(tree, "bleeding")
	if err != nil {
		t.Fatalf("RemoveGroup failed: %v", err)
	}
	if !reflect.DeepEqual(out.Groups, []string{"diabetes"}) {
		t.Errorf("catalog: got %v", out.Groups)
	}
	out.Walk(func(n *Node) {
		if n.Exclude.Contains("bleeding") {
			t.Errorf("marker for removed group survives on %s", n.Name)
		}
	})
	if !out.Categories[1].Categories[0].Exclude.Contains("diabetes") {
		t.Errorf("marker for the remaining group was stripped")
	}

	if _, err := RemoveGroup(out, "diabetes"); !errors.Is(err, ErrLastGroup) {
		t.Errorf("removing the last group: got %v, want ErrLastGroup", err)
	}
	if _, err := RemoveGroup(out, "surgery"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("removing unknown group: got %v, want ErrUnknownGroup", err)
	}
}

func TestRenameGroup(t *testing.T) {
	tree := testTree()
	tree.Categories[0].AddExclude("bleeding")

	out, err := RenameGroup(tree, "bleeding", "haemorrhage")
	if err != nil {
		t.Fatalf("RenameGroup failed: %v", err)
	}
	want := []string{"diabetes", "haemorrhage"}
	if !reflect.DeepEqual(out.Groups, want) {
		t.Errorf("catalog: got %v, want %v", out.Groups, want)
	}
	if !out.Categories[0].Exclude.Contains("haemorrhage") || out.Categories[0].Exclude.Contains("bleeding") {
		t.Errorf("marker not renamed: %v", out.Categories[0].Exclude)
	}

	// Membership carried over unchanged
	got := includedLeafNames(out, "haemorrhage")
	if !reflect.DeepEqual(got, []string{"K92.2"}) {
		t.Errorf("membership changed by rename: %v", got)
	}

	if _, err := RenameGroup(out, "missing", "x"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("rename unknown: got %v, want ErrUnknownGroup", err)
	}
	if _, err := RenameGroup(out, "haemorrhage", "diabetes"); !errors.Is(err, ErrGroupExists) {
		t.Errorf("rename onto existing: got %v, want ErrGroupExists", err)
	}
}

func TestHasGroup(t *testing.T) {
	tree := testTree()
	if !tree.HasGroup("bleeding") || !tree.HasGroup("diabetes") {
		t.Errorf("declared groups not found")
	}
	if tree.HasGroup("surgery") {
		t.Errorf("undeclared group reported present")
	}
}
