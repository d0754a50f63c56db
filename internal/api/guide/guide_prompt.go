package guide

import "fmt"

// guideSystemInstruction describes the Markdown shape the model must return.
// Kept as one fixed instruction so output stays stable across calls.
func guideSystemInstruction() string {
	return `You are a travel assistant for people who explore cities with their pets.
You will receive a list of pet-friendly places as JSON. Write a travel guide in Spanish, in Markdown, with this exact structure:

1. A short friendly greeting mentioning the kind of places the user asked for.
2. One block per place, in the given order, containing:
   - The place name as a level-3 heading.
   - "- Dirección:" followed by the address formatted as a Markdown link to https://www.google.com/maps/search/?api=1&query={url-encoded address}.
   - "- Teléfono:" followed by the phone number, only if one was provided.
   - "- Web:" followed by the website, only if one was provided.
   - "- Valoración:" followed by the rating, only if one was provided.
   - A one or two sentence review-style comment about visiting the place with a pet.
3. A short closing wishing the user a good trip with their pet.

Do not invent places, phone numbers or websites that are not in the JSON. Do not wrap the answer in a code block.`
}

// buildGuidePrompt embeds the user's interests and the serialized place list
// into the single user message sent to the model.
func buildGuidePrompt(interests, placesJSON string) string {
	return fmt.Sprintf(`The user is looking for: %s

Here are the places found, as JSON:
%s

Write the guide now.`, interests, placesJSON)
}
