package services

import (
	"fmt"
	"strings"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
)

const wellnessSystemPrompt = `You are a professional feline behavior and wellness expert that creates personalized wellness and behavior plans for cats based on owner-provided information.

Your task is to:
1. Analyze the cat's profile, behavior issues, enrichment details, and owner's goals.
2. Create a comprehensive wellness plan with the following sections:
   - Greeting & Cat Overview (a friendly intro with a summary of the cat's profile and main goals)
   - Health & Wellness Recommendations (nutrition, exercise, preventive care, grooming)
   - Behavior Training & Advice (address each behavior issue with positive, actionable tips)
   - Enrichment & Environment (how to keep the cat mentally stimulated and happy)
   - Follow-Up & Maintenance (timeline or checklist for implementing changes)

Format your response in markdown with clear sections. Be informative, supportive, and personalized.
Address the cat by name throughout the plan. Make specific recommendations based on the cat's age, breed, behavior issues, etc.
Your tone should be friendly yet professional, as if speaking to a fellow cat lover.`

const wellnessDataSystemPrompt = `You are a helpful assistant that generates JSON data based on wellness plans.`

const diagnosisDataSystemPrompt = `You are a helpful assistant that generates JSON data for visualizations based on medical diagnoses.`

func orNotSpecified(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Not specified"
	}
	return v
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func buildWellnessUserPrompt(p cat.Profile) string {
	var b strings.Builder

	b.WriteString("I need a wellness and behavior plan for my cat with the following details:\n\n")
	b.WriteString("**Basic Information:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(p.Age))
	fmt.Fprintf(&b, "- Breed: %s\n", orNotSpecified(p.Breed))
	sex := orNotSpecified(p.Sex)
	if strings.TrimSpace(p.Neutered) != "" {
		sex += fmt.Sprintf(" (%s)", p.Neutered)
	}
	fmt.Fprintf(&b, "- Sex: %s\n\n", sex)

	b.WriteString("**Health & Lifestyle:**\n")
	fmt.Fprintf(&b, "- Weight/Body Condition: %s\n", orNotSpecified(p.Weight))
	fmt.Fprintf(&b, "- Diet: %s\n", orNotSpecified(p.Diet))
	fmt.Fprintf(&b, "- Feeding Schedule: %s\n", orNotSpecified(p.Feeding))
	fmt.Fprintf(&b, "- Activity Level: %s\n", orNotSpecified(p.Activity))
	fmt.Fprintf(&b, "- Living Environment: %s\n\n", orNotSpecified(p.Environment))

	fmt.Fprintf(&b, "**Behavior Issues:** %s\n", joinOr(p.BehaviorIssues, "None mentioned"))
	if strings.TrimSpace(p.BehaviorDetails) != "" {
		fmt.Fprintf(&b, "**Behavior Details:** %s\n", p.BehaviorDetails)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "**Training:** %s\n\n", orNotSpecified(p.Training))

	b.WriteString("**Enrichment & Routine:**\n")
	fmt.Fprintf(&b, "- Daily Playtime: %s\n", orNotSpecified(p.PlayTime))
	fmt.Fprintf(&b, "- Favorite Activities: %s\n", joinOr(p.FavoriteActivities, "Not specified"))
	fmt.Fprintf(&b, "- Home Enrichment: %s\n", joinOr(p.HomeEnrichment, "Not specified"))
	fmt.Fprintf(&b, "- Other Pets: %s\n\n", orNotSpecified(p.OtherPets))

	goal := strings.TrimSpace(p.PrimaryGoal)
	if goal == "" {
		goal = "General wellness and happiness"
	}
	fmt.Fprintf(&b, "**Primary Goal:** %s\n\n", goal)

	b.WriteString("Please create a detailed, personalized wellness and behavior plan that addresses these specific details and provides actionable recommendations.")
	return b.String()
}

func buildWellnessDataPrompt(planContent string) string {
	return fmt.Sprintf(`Based on the following cat wellness and behavior plan, generate structured data in JSON format:

%s

Please provide the following structures:
1. healthRecommendations with subsections for nutrition, exercise, preventiveCare, and environment
2. behaviorTraining with a key for each behavior issue and value for the recommendation
3. enrichmentPlan with subsections for play, toys, environment, social, and rest
4. followUpSchedule with week numbers and tasks for each week (3-4 weeks)

Return ONLY valid JSON in this exact format without any explanation:
{
  "healthRecommendations": {
    "nutrition": "string",
    "exercise": "string",
    "preventiveCare": "string",
    "environment": "string"
  },
  "behaviorTraining": {
    "issue1": "string",
    "issue2": "string",
    ...
  },
  "enrichmentPlan": {
    "play": "string",
    "toys": "string",
    "environment": "string",
    "social": "string",
    "rest": "string"
  },
  "followUpSchedule": [
    { "week": number, "tasks": ["string", "string", ...] },
    ...
  ]
}`, planContent)
}

func buildDiagnosisSystemPrompt(hasImage bool) string {
	imageClause := ""
	firstStep := "Consider the symptoms described by the owner"
	secondStep := "Analyze the symptoms in detail"
	if hasImage {
		imageClause = "images and "
		firstStep = "Analyze the image of the cat's health concern"
		secondStep = "Consider the symptoms described by the owner"
	}
	return fmt.Sprintf(`You are a veterinary assistant AI that helps identify potential health issues in cats based on %ssymptoms described.

Your task is to:
1. %s
2. %s
3. Provide a preliminary assessment of what the issue might be
4. Suggest potential causes
5. Recommend appropriate next steps (when to see a vet, home care tips, etc.)
6. Include any warning signs to watch for
Mention the name of the cat in the response

Format your response in markdown with clear sections - be helpful and concise in your response

Be professional, compassionate, and helpful without being alarmist.`, imageClause, firstStep, secondStep)
}

func buildDiagnosisUserPrompt(petName, petAge, symptoms string, hasImage bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm concerned about my cat %s", petName)
	if strings.TrimSpace(petAge) != "" {
		fmt.Fprintf(&b, " who is %s old", petAge)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Symptoms: %s\n\n", symptoms)
	if hasImage {
		b.WriteString("I've attached a photo of the affected area. ")
	}
	b.WriteString("Can you help identify what might be wrong and what I should do?")
	return b.String()
}

func buildDiagnosisDataPrompt(diagnosisContent string) string {
	return fmt.Sprintf(`Based on the following cat health diagnosis, generate visualization data in JSON format:

%s

Please provide:
1. A severity score between 0.1 and 0.9
2. A list of 3-5 possible causes with probability scores between 0.1 and 0.9
3. A list of 3-4 recommended actions with urgency scores between 0.1 and 0.9

The severity score should reflect how serious the condition is.
The probability scores should reflect how likely each cause is.
The urgency scores should reflect how urgent each action is.

Return ONLY valid JSON in this exact format without any explanation:
{
  "severityScore": number,
  "possibleCauses": [
    { "name": "string", "probability": number },
    ...
  ],
  "recommendedActions": [
    { "action": "string", "urgency": number },
    ...
  ]
}`, diagnosisContent)
}
