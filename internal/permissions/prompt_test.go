package permissions

import "testing"

func TestStubPrompterReturnsAnswersInOrder(t *testing.T) {
	stub := NewStubPrompter(true, false, true)

	if !stub.Prompt("first") {
		t.Error("expected first answer to be true")
	}
	if stub.Prompt("second") {
		t.Error("expected second answer to be false")
	}
	if !stub.Prompt("third") {
		t.Error("expected third answer to be true")
	}

	if len(stub.Messages) != 3 {
		t.Fatalf("expected 3 recorded messages, got %d", len(stub.Messages))
	}
	if stub.Messages[0] != "first" || stub.Messages[1] != "second" || stub.Messages[2] != "third" {
		t.Errorf("unexpected recorded messages: %v", stub.Messages)
	}
}

func TestStubPrompterPanicsPastEnd(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected StubPrompter to panic once it runs out of answers")
		}
	}()
	stub := NewStubPrompter(true)
	stub.Prompt("only one")
	stub.Prompt("none left")
}

func TestStdioPrompterNonInteractiveDeniesWithoutReadingStdin(t *testing.T) {
	prompter := NewStdioPrompter()
	prompter.SetInteractive(false)

	if prompter.Prompt("anything") {
		t.Error("expected a forced non-interactive prompter to always deny")
	}
}

func TestStdioPrompterCreation(t *testing.T) {
	prompter := NewStdioPrompter()
	if prompter == nil {
		t.Fatal("NewStdioPrompter returned nil")
	}
}
