package models

import "time"

func strPtr(s string) *string { return &s }

// SeedProtocols 内置的急救规程
func SeedProtocols(now time.Time) []EmergencyProtocol {
	return []EmergencyProtocol{
		{
			Type:        "cardiac_arrest",
			Name:        "Cardiac Arrest (CPR)",
			Description: "Person is unresponsive and not breathing or only gasping",
			Instructions: Instructions{
				Steps: []string{
					"Call 911 or your local emergency number immediately",
					"Place the person on their back on a firm, flat surface",
					"Put the heel of your hand on the center of the chest, other hand on top",
					"Push hard and fast: at least 2 inches deep, 100-120 compressions per minute",
					"Allow the chest to fully recoil between compressions",
					"If trained, give 2 rescue breaths after every 30 compressions",
					"Use an AED as soon as one is available and follow its prompts",
					"Continue until help arrives or the person starts breathing",
				},
				Warnings: []string{
					"Do not stop compressions except to use an AED",
					"Minimize interruptions to chest compressions",
				},
				Supplies: []string{"AED (if available)", "CPR face shield"},
			},
			Severity:  SeverityCritical,
			Category:  "medical",
			Languages: map[string]string{"en": "Cardiac Arrest (CPR)", "es": "Paro Cardíaco (RCP)", "fr": "Arrêt Cardiaque (RCR)", "de": "Herzstillstand (HLW)", "zh": "心脏骤停（心肺复苏）"},
			CreatedAt: now,
		},
		{
			Type:        "choking",
			Name:        "Choking",
			Description: "Airway is blocked and the person cannot breathe, cough or speak",
			Instructions: Instructions{
				Steps: []string{
					"Ask \"Are you choking?\" If they cannot speak, act immediately",
					"Stand behind the person and lean them slightly forward",
					"Give 5 firm back blows between the shoulder blades with the heel of your hand",
					"Give 5 abdominal thrusts: fist above the navel, pull sharply inward and upward",
					"Alternate 5 back blows and 5 abdominal thrusts until the object is expelled",
					"If the person becomes unresponsive, call 911 and begin CPR",
				},
				Warnings: []string{
					"Do not perform abdominal thrusts on infants under 1 year",
					"For pregnant or obese people, use chest thrusts instead",
				},
			},
			Severity:  SeverityCritical,
			Category:  "medical",
			Languages: map[string]string{"en": "Choking", "es": "Asfixia", "fr": "Étouffement", "de": "Ersticken", "zh": "窒息"},
			CreatedAt: now,
		},
		{
			Type:        "severe_bleeding",
			Name:        "Severe Bleeding",
			Description: "Heavy bleeding that does not stop with light pressure",
			Instructions: Instructions{
				Steps: []string{
					"Call 911 for severe bleeding",
					"Wear gloves if available",
					"Apply firm, direct pressure on the wound with a clean cloth or bandage",
					"Do not remove the cloth if blood soaks through; add more layers on top",
					"If bleeding from an arm or leg does not stop, apply a tourniquet above the wound",
					"Keep the person warm and lying down until help arrives",
				},
				Warnings: []string{
					"Do not remove embedded objects",
					"Note the time a tourniquet was applied",
				},
				Supplies: []string{"Clean cloth or gauze", "Gloves", "Tourniquet"},
			},
			Severity:  SeverityHigh,
			Category:  "medical",
			Languages: map[string]string{"en": "Severe Bleeding", "es": "Sangrado Severo", "fr": "Saignement Grave", "de": "Starke Blutung", "zh": "严重出血"},
			CreatedAt: now,
		},
		{
			Type:        "fire",
			Name:        "Fire Emergency",
			Description: "Fire or smoke in a building or vehicle",
			Instructions: Instructions{
				Steps: []string{
					"Alert everyone nearby and get out immediately",
					"Stay low to the ground to avoid smoke",
					"Feel doors with the back of your hand before opening; do not open hot doors",
					"Use stairs, never elevators",
					"Once outside, call 911 and stay out",
					"If clothes catch fire: stop, drop and roll",
				},
				Warnings: []string{
					"Never go back inside a burning building",
					"Do not use water on grease or electrical fires",
				},
			},
			Severity:  SeverityCritical,
			Category:  "fire",
			Languages: map[string]string{"en": "Fire Emergency", "es": "Emergencia de Incendio", "fr": "Urgence Incendie", "de": "Brandnotfall", "zh": "火灾紧急情况"},
			CreatedAt: now,
		},
		{
			Type:        "stroke",
			Name:        "Stroke",
			Description: "Sudden numbness, confusion, trouble speaking or seeing",
			Instructions: Instructions{
				Steps: []string{
					"Use F.A.S.T.: Face drooping, Arm weakness, Speech difficulty, Time to call 911",
					"Call 911 immediately and note the time symptoms started",
					"Keep the person calm and lying with head slightly raised",
					"Do not give food, drink or medication",
					"Monitor breathing and be ready to start CPR",
				},
				Warnings: []string{
					"Do not let the person go to sleep or talk you out of calling 911",
				},
			},
			Severity:  SeverityCritical,
			Category:  "medical",
			Languages: map[string]string{"en": "Stroke", "es": "Derrame Cerebral", "fr": "AVC", "de": "Schlaganfall", "zh": "中风"},
			CreatedAt: now,
		},
	}
}

// SeedContacts 内置的美国紧急电话
func SeedContacts() []EmergencyContact {
	return []EmergencyContact{
		{Name: "Emergency Services", PhoneNumber: "911", Type: ContactGeneral, Country: "US", IsActive: true},
		{Name: "Poison Control", PhoneNumber: "1-800-222-1222", Type: ContactMedical, Country: "US", IsActive: true},
		{Name: "Suicide & Crisis Lifeline", PhoneNumber: "988", Type: ContactMedical, Country: "US", IsActive: true},
		{Name: "Non-Emergency Police", PhoneNumber: "311", Type: ContactPolice, Country: "US", Region: strPtr("Local"), IsActive: true},
	}
}
