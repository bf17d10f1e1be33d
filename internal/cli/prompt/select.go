package prompt

import "github.com/manifoldco/promptui"

// SelectString prompts the user to select from a list of strings, returning
// the chosen string.
func SelectString(label string, items []string) (string, error) {
	p := promptui.Select{Label: label, Items: items, Size: len(items)}
	_, result, err := p.Run()
	return result, wrapError(err)
}
