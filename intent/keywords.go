package intent

import (
	"slices"
	"strings"

	"mic/config"
)

// Keyword maps a trigger phrase to the intent it selects. Phrases are
// matched as case-insensitive prefixes of the utterance.
type Keyword struct {
	Phrase string
	Intent string
}

// KeywordTable is an ordered, immutable list of trigger phrases. Order
// matters only to break ties between equally long matching phrases: the
// earlier declaration wins.
type KeywordTable struct {
	entries []Keyword
}

// NewKeywordTable builds a table from entries in order. Phrases are
// lower-cased; empty entries are skipped and a repeated phrase keeps its
// first declaration.
func NewKeywordTable(entries []Keyword) *KeywordTable {
	t := &KeywordTable{entries: make([]Keyword, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		phrase := strings.ToLower(e.Phrase)
		if strings.TrimSpace(phrase) == "" || e.Intent == "" || seen[phrase] {
			continue
		}
		seen[phrase] = true
		t.entries = append(t.entries, Keyword{Phrase: phrase, Intent: e.Intent})
	}
	return t
}

// TableFromConfig returns the default catalogue followed by the operator's
// [[intents.keywords]] entries in file order.
func TableFromConfig(extra []config.KeywordConfig) *KeywordTable {
	entries := DefaultKeywords()
	for _, k := range extra {
		entries = append(entries, Keyword{Phrase: k.Phrase, Intent: k.Intent})
	}
	return NewKeywordTable(entries)
}

// Match returns the longest phrase that prefixes utterance, comparing
// case-insensitively.
func (t *KeywordTable) Match(utterance string) (Keyword, bool) {
	var best Keyword
	found := false
	for _, e := range t.entries {
		if len(e.Phrase) <= len(best.Phrase) {
			continue
		}
		if hasPrefixFold(utterance, e.Phrase) {
			best, found = e, true
		}
	}
	return best, found
}

// Entries returns a copy of the table in declaration order.
func (t *KeywordTable) Entries() []Keyword {
	return slices.Clone(t.entries)
}

func (t *KeywordTable) Len() int {
	return len(t.entries)
}

// Phrases returns the trigger phrases that select intent.
func (t *KeywordTable) Phrases(intent string) []string {
	var out []string
	for _, e := range t.entries {
		if e.Intent == intent {
			out = append(out, e.Phrase)
		}
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// DefaultKeywords returns the built-in trigger catalogue in declaration
// order.
func DefaultKeywords() []Keyword {
	return slices.Clone(defaultKeywords)
}

var defaultKeywords = []Keyword{
	{"web search:", "web_search"},
	{"generate code:", "generate_code"},
	{"explain code:", "explain_code"},
	{"refactor code:", "refactor_code"},
	{"generate image:", "generate_image"},
	{"analyze image:", "analyze_image"},
	{"write poem about:", "write_poem"},
	{"write story about:", "write_story"},
	{"write song about:", "write_song"},
	{"write essay about:", "write_essay"},
	{"write article about:", "write_article"},
	{"analyze data:", "analyze_data"},
	{"read file:", "read_file"},
	{"summarize:", "summarize"},
	{"generate text:", "generate_text"},
	{"clone voice:", "clone_voice"},
	{"generate chart:", "generate_chart"},
	{"format code:", "format_code"},
	{"manage dependency:", "manage_dependency"},
	{"generate api docs:", "generate_api_docs"},
	{"migrate database:", "migrate_database"},
	{"analyze log:", "analyze_log"},
	{"monitor performance:", "monitor_performance"},
	{"scan for vulnerabilities:", "scan_for_vulnerabilities"},
	{"analyze code complexity:", "analyze_code_complexity"},
	{"manage feature flag:", "manage_feature_flag"},
	{"orchestrate a/b test:", "orchestrate_a_b_test"},
	{"collect user feedback:", "collect_user_feedback"},
	{"generate report:", "generate_report"},
	{"anonymize data:", "anonymize_data"},
	{"start collaboration:", "start_collaboration"},
	{"manage code snippet:", "manage_code_snippet"},
	{"manage env var:", "manage_env_var"},
	{"orchestrate container:", "orchestrate_container"},
	{"provision cloud resource:", "provision_cloud_resource"},
	{"analyze network traffic:", "analyze_network_traffic"},
	{"check system health:", "check_system_health"},
	{"deploy application:", "deploy_application"},
	{"assist version control:", "assist_version_control"},
	{"integrate issue tracker:", "integrate_issue_tracker"},
	{"generate meeting minutes:", "generate_meeting_minutes"},
	{"create presentation:", "create_presentation"},
	{"automate spreadsheet:", "automate_spreadsheet"},
	{"edit pdf:", "edit_pdf"},
	{"resize image:", "resize_image"},
	{"edit audio:", "edit_audio"},
	{"convert video:", "convert_video"},
	{"compress file:", "compress_file"},
	{"manage clipboard:", "manage_clipboard"},
	{"annotate screenshot:", "annotate_screenshot"},
	{"convert unit:", "convert_unit"},
	{"convert timezone:", "convert_timezone"},
	{"generate recipe:", "generate_recipe"},
	{"plan workout:", "plan_workout"},
	{"create study schedule:", "create_study_schedule"},
	{"track finance:", "track_finance"},
	{"plan travel:", "plan_travel"},
	{"api test:", "api_test"},
	{"calendar:", "calendar"},
	{"debug code:", "debug_code"},
	{"review code:", "review_code"},
	{"query db:", "query_db"},
	{"create doc:", "create_doc"},
	{"send email:", "send_email"},
	{"extract entities:", "extract_entities"},
	{"search kb:", "search_kb"},
	{"generate music:", "generate_music"},
	{"net diag:", "net_diag"},
	{"generate password:", "generate_password"},
	{"scaffold project:", "scaffold_project"},
	{"analyze sentiment:", "analyze_sentiment"},
	{"transcribe:", "transcribe"},
	{"system monitor:", "system_monitor"},
	{"translate:", "translate"},
	{"generate unit test:", "generate_unit_test"},
	{"process video:", "process_video"},
	{"scrape_web:", "scrape_web"},
	{"cross_lingual_information_retrieval:", "cross_lingual_information_retrieval"},
	{"nuanced_sentiment_analysis:", "nuanced_sentiment_analysis"},
	{"stylometric_analysis:", "stylometric_analysis"},
	{"figurative_language_interpreter:", "figurative_language_interpreter"},
	{"dialogue_state_tracker:", "dialogue_state_tracker"},
	{"long_form_abstractive_summarization:", "long_form_abstractive_summarization"},
	{"narrative_generation:", "narrative_generation"},
	{"code_documentation_generator:", "code_documentation_generator"},
	{"legal_document_analyzer:", "legal_document_analyzer"},
	{"medical_text_deidentifier:", "medical_text_deidentifier"},
	{"argument_miner:", "argument_miner"},
	{"complex_question_answering:", "complex_question_answering"},
	{"fact_checker:", "fact_checker"},
	{"personalized_content_generator:", "personalized_content_generator"},
	{"speech_to_text_with_diarization:", "speech_to_text_with_diarization"},
	{"emotional_text_to_speech:", "emotional_text_to_speech"},
	{"domain_specific_language_model_finetuning:", "domain_specific_language_model_finetuning"},
	{"advanced_grammar_and_style_correction:", "advanced_grammar_and_style_correction"},
	{"structured_data_to_text_report_writer:", "structured_data_to_text_report_writer"},
	{"chatbot_personality_generator:", "chatbot_personality_generator"},
	{"semantic_search:", "semantic_search"},
	{"discourse_analyzer:", "discourse_analyzer"},
	{"context_aware_translation:", "context_aware_translation"},
	{"text_paraphraser_and_rewriter:", "text_paraphraser_and_rewriter"},
	{"automated_essay_scorer:", "automated_essay_scorer"},
	{"generative_image_synthesis:", "generative_image_synthesis"},
	{"image_inpainting_outpainting:", "image_inpainting_outpainting"},
	{"style_transfer:", "style_transfer"},
	{"super_resolution:", "super_resolution"},
	{"3d_reconstruction_from_2d:", "3d_reconstruction_from_2d"},
	{"human_pose_estimation:", "human_pose_estimation"},
	{"action_recognition:", "action_recognition"},
	{"gaze_tracking:", "gaze_tracking"},
	{"facial_landmark_detection:", "facial_landmark_detection"},
	{"image_captioning:", "image_captioning"},
	{"video_summarization:", "video_summarization"},
	{"anomaly_detection_in_surveillance:", "anomaly_detection_in_surveillance"},
	{"medical_image_segmentation:", "medical_image_segmentation"},
	{"defect_detection_in_manufacturing:", "defect_detection_in_manufacturing"},
	{"crowd_counting:", "crowd_counting"},
	{"augmented_reality_content_generation:", "augmented_reality_content_generation"},
	{"virtual_try_on:", "virtual_try_on"},
	{"image_forgery_detection:", "image_forgery_detection"},
	{"object_tracking_in_dynamic_environments:", "object_tracking_in_dynamic_environments"},
	{"visual_question_answering:", "visual_question_answering"},
	{"automated_theorem_proving:", "automated_theorem_proving"},
	{"strategic_game_playing:", "strategic_game_playing"},
	{"automated_scheduling_and_optimization:", "automated_scheduling_and_optimization"},
	{"causal_inference:", "causal_inference"},
	{"hypothesis_generation:", "hypothesis_generation"},
	{"automated_experiment_design:", "automated_experiment_design"},
	{"knowledge_graph_construction:", "knowledge_graph_construction"},
	{"multi_agent_system_coordination:", "multi_agent_system_coordination"},
	{"robotic_path_planning:", "robotic_path_planning"},
	{"automated_debugging:", "automated_debugging"},
	{"legal_case_prediction:", "legal_case_prediction"},
	{"financial_market_prediction:", "financial_market_prediction"},
	{"drug_discovery_and_molecular_design:", "drug_discovery_and_molecular_design"},
	{"supply_chain_resilience_planning:", "supply_chain_resilience_planning"},
	{"personalized_education_path_planning:", "personalized_education_path_planning"},
	{"resource_allocation_optimization:", "resource_allocation_optimization"},
	{"automated_negotiation:", "automated_negotiation"},
	{"ethical_decision_making_frameworks:", "ethical_decision_making_frameworks"},
	{"counterfactual_reasoning:", "counterfactual_reasoning"},
	{"automated_policy_generation:", "automated_policy_generation"},
	{"music_composition:", "music_composition"},
	{"sound_design_and_synthesis:", "sound_design_and_synthesis"},
	{"video_generation:", "video_generation"},
	{"game_level_design:", "game_level_design"},
	{"fashion_design:", "fashion_design"},
	{"architectural_design:", "architectural_design"},
	{"recipe_generation:", "recipe_generation"},
	{"poetry_generation:", "poetry_generation"},
	{"choreography_generation:", "choreography_generation"},
	{"3d_model_generation:", "3d_model_generation"},
	{"meta_learning:", "meta_learning"},
	{"continual_learning:", "continual_learning"},
	{"few_shot_learning:", "few_shot_learning"},
	{"self_supervised_learning:", "self_supervised_learning"},
	{"reinforcement_learning_from_human_feedback:", "reinforcement_learning_from_human_feedback"},
	{"active_learning:", "active_learning"},
	{"transfer_learning:", "transfer_learning"},
	{"adaptive_control_systems:", "adaptive_control_systems"},
	{"personalized_learning_agents:", "personalized_learning_agents"},
	{"curriculum_learning:", "curriculum_learning"},
	{"emotion_aware_interaction:", "emotion_aware_interaction"},
	{"gesture_recognition_and_interpretation:", "gesture_recognition_and_interpretation"},
	{"brain_computer_interface_interpretation:", "brain_computer_interface_interpretation"},
	{"haptic_feedback_generation:", "haptic_feedback_generation"},
	{"social_robotics:", "social_robotics"},
	{"human_robot_collaboration:", "human_robot_collaboration"},
	{"personalized_digital_avatars:", "personalized_digital_avatars"},
	{"context_aware_assistants:", "context_aware_assistants"},
	{"proactive_assistance:", "proactive_assistance"},
	{"adaptive_user_interfaces:", "adaptive_user_interfaces"},
	{"climate_modeling_and_prediction:", "climate_modeling_and_prediction"},
	{"astrophysics_data_analysis:", "astrophysics_data_analysis"},
	{"materials_science_discovery:", "materials_science_discovery"},
	{"genomic_data_analysis_and_drug_repurposing:", "genomic_data_analysis_and_drug_repurposing"},
	{"agricultural_yield_prediction_and_optimization:", "agricultural_yield_prediction_and_optimization"},
	{"urban_planning_and_smart_city_optimization:", "urban_planning_and_smart_city_optimization"},
	{"disaster_response_and_management:", "disaster_response_and_management"},
	{"archaeological_site_analysis:", "archaeological_site_analysis"},
	{"forensic_analysis:", "forensic_analysis"},
	{"sports_analytics_and_performance_optimization:", "sports_analytics_and_performance_optimization"},
	{"legal_research_and_document_review:", "legal_research_and_document_review"},
	{"environmental_monitoring_and_pollution_tracking:", "environmental_monitoring_and_pollution_tracking"},
	{"personalized_healthcare_and_treatment_plans:", "personalized_healthcare_and_treatment_plans"},
	{"financial_risk_assessment:", "financial_risk_assessment"},
	{"insurance_underwriting_automation:", "insurance_underwriting_automation"},
	{"geological_survey_and_resource_exploration:", "geological_survey_and_resource_exploration"},
	{"educational_content_curation:", "educational_content_curation"},
	{"art_restoration_and_preservation:", "art_restoration_and_preservation"},
	{"wildlife_monitoring_and_conservation:", "wildlife_monitoring_and_conservation"},
	{"cybersecurity_threat_hunting:", "cybersecurity_threat_hunting"},
	{"synthetic_data_generation:", "synthetic_data_generation"},
	{"data_augmentation_for_low_resource_scenarios:", "data_augmentation_for_low_resource_scenarios"},
	{"missing_data_imputation:", "missing_data_imputation"},
	{"data_denoising_and_cleaning:", "data_denoising_and_cleaning"},
	{"data_anonymization:", "data_anonymization"},
	{"bias_detection_and_mitigation:", "bias_detection_and_mitigation"},
	{"fairness_aware_ai_development:", "fairness_aware_ai_development"},
	{"privacy_preserving_ai_training:", "privacy_preserving_ai_training"},
	{"accountability_frameworks_for_ai:", "accountability_frameworks_for_ai"},
	{"transparency_in_ai_decision_making:", "transparency_in_ai_decision_making"},
	{"ai_governance_and_policy_enforcement:", "ai_governance_and_policy_enforcement"},
	{"human_in_the_loop_optimization:", "human_in_the_loop_optimization"},
	{"robustness_testing:", "robustness_testing"},
	{"ai_safety_and_alignment_research:", "ai_safety_and_alignment_research"},
	{"explainable_ai_for_non_experts:", "explainable_ai_for_non_experts"},

	// task-style tools
	{"schedule meeting:", "schedule_meeting"},
	{"monitor health:", "monitor_health"},
	{"generate storyboard:", "generate_storyboard"},
	{"design logo:", "design_logo"},
	{"design interior:", "design_interior"},
	{"generate tutorial:", "generate_tutorial"},
	{"tutor language:", "tutor_language"},
	{"solve math problem:", "solve_math_problem"},
	{"start game:", "start_game"},
	{"tell joke:", "tell_joke"},
	{"recommend movie:", "recommend_movie"},

	// speculative tools
	{"build cognitive model:", "build_cognitive_model"},
	{"generate learning curriculum:", "generate_learning_curriculum"},
	{"detect cognitive bias:", "detect_cognitive_bias"},
	{"analyze dream journal:", "analyze_dream_journal"},
	{"create digital twin:", "create_digital_twin"},
	{"simulate economic system:", "simulate_economic_system"},
	{"simulate history:", "simulate_history"},
	{"build metaverse:", "build_metaverse"},
	{"discover science:", "discover_science"},
	{"simulate nanotechnology:", "simulate_nanotechnology"},
	{"design quantum algorithm:", "design_quantum_algorithm"},
	{"simulate climate engineering:", "simulate_climate_engineering"},
	{"assist film director:", "assist_film_director"},
	{"create interactive narrative:", "create_interactive_narrative"},
	{"collaborate on art:", "collaborate_on_art"},
	{"compose emotional music:", "compose_emotional_music"},
}
