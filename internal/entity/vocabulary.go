package entity

import (
	"fmt"
	"strings"
)

// Vocabulary holds the literal term lists per category plus the dosage
// regex templates. It is a plain value: build it once, hand it to New,
// and never mutate it afterwards.
type Vocabulary struct {
	Terms          map[Category][]string
	DosagePatterns []string
}

// Validate checks the vocabulary for construction errors: unknown category
// keys, literal terms under DOSAGE (dosage is pattern-only), empty terms,
// and duplicate terms within a category. Duplicates across categories are
// allowed; the same word can legitimately belong to two vocabularies.
func (v Vocabulary) Validate() error {
	for c, terms := range v.Terms {
		if !c.Valid() {
			return fmt.Errorf("unknown category: %s", c)
		}
		if c == CategoryDosage {
			return fmt.Errorf("category %s takes regex patterns, not literal terms", c)
		}
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			if term == "" {
				return fmt.Errorf("empty term in category %s", c)
			}
			key := strings.ToLower(term)
			if seen[key] {
				return fmt.Errorf("duplicate term %q in category %s", term, c)
			}
			seen[key] = true
		}
	}
	for _, p := range v.DosagePatterns {
		if p == "" {
			return fmt.Errorf("empty dosage pattern")
		}
	}
	return nil
}

// WithExtra returns a copy of v with additional terms and dosage patterns
// appended. The receiver is not modified.
func (v Vocabulary) WithExtra(terms map[Category][]string, dosagePatterns []string) Vocabulary {
	merged := Vocabulary{
		Terms:          make(map[Category][]string, len(v.Terms)),
		DosagePatterns: append([]string(nil), v.DosagePatterns...),
	}
	for c, ts := range v.Terms {
		merged.Terms[c] = append([]string(nil), ts...)
	}
	for c, ts := range terms {
		merged.Terms[c] = append(merged.Terms[c], ts...)
	}
	merged.DosagePatterns = append(merged.DosagePatterns, dosagePatterns...)
	return merged
}

// TermCount returns the total number of literal terms across all categories.
func (v Vocabulary) TermCount() int {
	n := 0
	for _, terms := range v.Terms {
		n += len(terms)
	}
	return n
}

// DefaultVocabulary returns the built-in medical vocabularies.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Terms: map[Category][]string{
			CategoryDisease: {
				"diabetes", "hypertension", "cancer", "asthma", "pneumonia",
				"bronchitis", "arthritis", "influenza", "tuberculosis", "malaria",
				"covid-19", "coronavirus", "migraine", "depression", "anxiety",
				"schizophrenia", "alzheimer", "parkinson", "stroke", "heart attack",
				"myocardial infarction", "angina", "epilepsy", "seizure", "lupus",
				"hepatitis", "cirrhosis", "kidney disease", "renal failure",
				"liver disease", "gallstones", "appendicitis", "gastritis",
				"ulcer", "ibs", "irritable bowel syndrome", "crohn disease",
				"celiac disease", "anemia", "leukemia", "lymphoma", "melanoma",
				"osteoporosis", "fibromyalgia", "gout", "thyroid disease",
				"hyperthyroidism", "hypothyroidism", "diabetes type 1",
				"diabetes type 2", "gestational diabetes", "copd",
				"chronic obstructive pulmonary disease", "emphysema",
			},
			CategoryMedication: {
				"aspirin", "ibuprofen", "acetaminophen", "paracetamol", "morphine",
				"codeine", "tramadol", "oxycodone", "fentanyl", "metformin",
				"insulin", "lisinopril", "amlodipine", "atorvastatin", "simvastatin",
				"omeprazole", "pantoprazole", "albuterol", "prednisone", "warfarin",
				"heparin", "digoxin", "furosemide", "hydrochlorothiazide",
				"levothyroxine", "synthroid", "gabapentin", "pregabalin",
				"sertraline", "fluoxetine", "citalopram", "escitalopram",
				"venlafaxine", "duloxetine", "risperidone", "quetiapine",
				"olanzapine", "haloperidol", "lorazepam", "diazepam",
				"alprazolam", "clonazepam", "zolpidem", "eszopiclone",
				"amoxicillin", "azithromycin", "ciprofloxacin", "doxycycline",
				"penicillin", "vancomycin", "cephalexin", "metronidazole",
			},
			CategorySymptom: {
				"fever", "headache", "nausea", "vomiting", "diarrhea", "constipation",
				"cough", "sore throat", "runny nose", "congestion", "fatigue",
				"weakness", "dizziness", "shortness of breath", "chest pain",
				"abdominal pain", "back pain", "joint pain", "muscle pain",
				"rash", "itching", "swelling", "inflammation", "bleeding",
				"bruising", "numbness", "tingling", "vision problems",
				"hearing loss", "tinnitus", "difficulty swallowing",
				"loss of appetite", "weight loss", "weight gain", "insomnia",
				"excessive sleepiness", "confusion", "memory loss", "seizures",
				"tremors", "stiffness", "palpitations", "irregular heartbeat",
				"high blood pressure", "low blood pressure", "difficulty breathing",
				"wheezing", "snoring", "night sweats", "hot flashes",
				"cold intolerance", "heat intolerance", "excessive thirst",
				"frequent urination", "painful urination", "blood in urine",
				"loose stools", "heartburn", "acid reflux",
			},
			CategoryBodyPart: {
				"head", "brain", "skull", "face", "eye", "eyes", "ear", "ears",
				"nose", "mouth", "teeth", "tongue", "throat", "neck", "shoulder",
				"shoulders", "arm", "arms", "elbow", "elbows", "wrist", "wrists",
				"hand", "hands", "finger", "fingers", "thumb", "chest", "breast",
				"breasts", "lung", "lungs", "heart", "back", "spine", "abdomen",
				"stomach", "liver", "kidney", "kidneys", "bladder", "intestines",
				"colon", "rectum", "hip", "hips", "leg", "legs", "thigh", "thighs",
				"knee", "knees", "ankle", "ankles", "foot", "feet", "toe", "toes",
				"skin", "muscle", "muscles", "bone", "bones", "joint", "joints",
				"blood", "vein", "veins", "artery", "arteries", "nerve", "nerves",
				"thyroid", "pancreas", "gallbladder", "appendix", "spleen",
				"lymph nodes", "prostate", "uterus", "ovaries", "testicles",
			},
			CategoryProcedure: {
				"surgery", "operation", "biopsy", "endoscopy", "colonoscopy",
				"mammography", "ultrasound", "x-ray", "ct scan", "mri",
				"pet scan", "ecg", "ekg", "echocardiogram", "stress test",
				"blood test", "urine test", "physical examination", "checkup",
				"vaccination", "immunization", "injection", "transfusion",
				"dialysis", "chemotherapy", "radiation therapy", "physical therapy",
				"occupational therapy", "speech therapy", "psychotherapy",
				"counseling", "anesthesia", "intubation", "catheterization",
				"suturing", "wound care", "bandaging", "cast application",
				"splinting", "joint replacement", "bypass surgery",
				"angioplasty", "stent placement", "pacemaker implantation",
			},
			CategoryTest: {
				"complete blood count", "cbc", "basic metabolic panel", "bmp",
				"comprehensive metabolic panel", "cmp", "lipid panel",
				"liver function tests", "kidney function tests", "thyroid function tests",
				"glucose test", "hemoglobin a1c", "psa test", "cholesterol test",
				"triglycerides test", "blood pressure measurement", "pulse oximetry",
				"spirometry", "pulmonary function tests", "electrocardiogram",
				"holter monitor", "event monitor", "treadmill test",
				"nuclear stress test", "cardiac catheterization", "angiogram",
				"bone density scan", "dexa scan", "skin test", "allergy test",
				"culture test", "sensitivity test", "pathology report",
				"genetic testing", "tumor markers", "inflammatory markers",
			},
		},
		DosagePatterns: []string{
			`\b\d+\s*mg\b`,
			`\b\d+\s*mcg\b`,
			`\b\d+\s*g\b`,
			`\b\d+\s*ml\b`,
			`\b\d+\s*units?\b`,
			`\b\d+\s*tablets?\b`,
			`\b\d+\s*capsules?\b`,
			`\b\d+\s*times?\s+(?:a\s+)?day\b`,
			`\b(?:once|twice|thrice)\s+(?:a\s+)?day\b`,
			`\bevery\s+\d+\s+hours?\b`,
			`\b\d+\s*drops?\b`,
		},
	}
}
