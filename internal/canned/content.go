package canned

import "github.com/hyperjump/docassist/internal/models"

// sampleExplanations are the documents the fallback explainer picks from.
var sampleExplanations = []models.Explanation{
	{
		DocumentType: "Non-Disclosure Agreement",
		Explanation:  "This Non-Disclosure Agreement (NDA) is a legal contract that creates a confidential relationship between two or more parties. **Purpose and Overview:** The primary purpose of this document is to protect sensitive information from being shared with unauthorized parties. Think of it as a legal 'promise to keep secrets' that has serious consequences if broken.\n\n**Key Parties Involved:** This agreement typically involves a 'Disclosing Party' (the person or company sharing confidential information) and a 'Receiving Party' (the person or company that will have access to this information). Both parties have specific legal obligations under this agreement.\n\n**What Information is Protected:** The NDA covers various types of confidential information including business strategies, customer lists, financial data, technical specifications, trade secrets, and any other proprietary information. This protection extends to verbal, written, and electronic communications.\n\n**Legal Obligations and Restrictions:** The receiving party must keep all information strictly confidential, use it only for the specified purpose, and cannot share it with anyone else without written permission. They also cannot use this information to compete against the disclosing party or for their own benefit beyond the agreed scope.\n\n**Duration and Scope:** NDAs specify how long the confidentiality obligations last (often 2-5 years or indefinitely for trade secrets) and clearly define what constitutes confidential information versus public knowledge.\n\n**Consequences of Breach:** If someone violates the NDA, they may face serious legal consequences including monetary damages, injunctive relief (court orders to stop the violation), and payment of legal fees. The agreement may also specify liquidated damages - predetermined amounts to be paid for breaches.",
	},
	{
		DocumentType: "Court Order",
		Explanation:  "This Court Order is an official directive issued by a judge or magistrate that legally requires specific actions to be taken or prohibits certain behaviors. **Nature and Authority:** A court order carries the full force of law and must be obeyed by all parties mentioned in the document. Failure to comply can result in contempt of court charges, fines, or even imprisonment.\n\n**Parties and Jurisdiction:** The order identifies the specific court issuing the directive, the presiding judge, and all parties who must comply with the order. It also establishes the legal jurisdiction and authority under which the order is issued.\n\n**Specific Directives:** Court orders contain precise instructions about what must be done, when it must be completed, and by whom. This might include paying money, transferring property, stopping certain activities, or appearing in court on specific dates.\n\n**Legal Basis:** The order explains the legal reasoning behind the directive, often referencing specific laws, previous court decisions, or evidence presented in the case. This provides the foundation for the court's authority to issue such an order.\n\n**Compliance Requirements:** The document outlines exactly what each party must do to comply, including specific deadlines, reporting requirements, and consequences for non-compliance. \n\n**Enforcement Mechanisms:** If someone fails to follow the court order, the document typically explains the enforcement procedures, which may include additional penalties, asset seizure, or criminal charges for contempt of court.",
	},
	{
		DocumentType: "Service Agreement",
		Explanation:  "This Service Agreement is a legally binding contract that outlines the terms and conditions for services to be provided between two parties. **Purpose and Scope:** This document establishes a professional relationship where one party (the service provider) agrees to perform specific services for another party (the client) in exchange for compensation.\n\n**Service Description:** The agreement provides detailed descriptions of what services will be performed, including specific deliverables, quality standards, timelines, and performance metrics. This section acts like a detailed job description that both parties must follow.\n\n**Payment Terms and Structure:** The document clearly outlines how much will be paid, when payments are due, what payment methods are accepted, and any penalties for late payment. This might include hourly rates, fixed fees, milestone payments, or recurring charges.\n\n**Responsibilities and Obligations:** Both parties have specific responsibilities clearly defined in the agreement. The service provider must deliver services according to agreed standards, while the client must provide necessary cooperation, materials, or access required for service delivery.\n\n**Timeline and Milestones:** The agreement establishes start dates, completion deadlines, and any intermediate milestones. This creates accountability and helps both parties plan their resources and expectations.\n\n**Legal Protections:** The document includes provisions for handling disputes, intellectual property rights, confidentiality requirements, liability limitations, and termination procedures. These protect both parties if something goes wrong or if the relationship needs to end early.",
	},
}

const (
	partiesAnswer         = "Based on the document, the main parties are the Service Provider and the Client. The Service Provider is responsible for delivering the specified services according to the agreed standards, while the Client must provide necessary cooperation, materials, and timely payments as outlined in the agreement."
	deadlinesAnswer       = "The document contains several important deadlines: Initial service delivery within 30 days of agreement execution, milestone reviews every 2 weeks, final deliverables due 90 days from start date, and payment terms of Net 15 days. Missing these deadlines could result in contract penalties or termination rights for the non-breaching party."
	breachAnswer          = "If there's a breach of this contract, several consequences may apply: The non-breaching party may terminate the agreement with written notice, seek monetary damages for losses incurred, request specific performance of obligations, and recover attorney fees and court costs. The document also requires mediation before pursuing litigation."
	confidentialityAnswer = "Yes, the document includes comprehensive confidentiality provisions. Both parties must protect proprietary information, trade secrets, and sensitive business data. These obligations survive contract termination and typically last for 2-3 years. Violations may result in injunctive relief and monetary damages."
	paymentAnswer         = "The payment structure includes an initial deposit of 25% upon signing, milestone payments of 50% at mid-project completion, and final payment of 25% upon delivery. All invoices are due within 15 days, with late fees of 1.5% per month on overdue amounts. Payments can be made via check, wire transfer, or ACH."
	terminationAnswer     = "Yes, the contract allows for early termination under specific circumstances: Either party may terminate with 30 days written notice, immediate termination is allowed for material breach that isn't cured within 15 days, and termination for convenience requires payment for work completed plus reasonable wind-down costs."
)

// GenericReplies are returned when a question matches no keyword category.
var GenericReplies = []string{
	"Based on the document analysis, this appears to be a standard legal agreement with specific terms and conditions. Could you be more specific about what aspect you'd like me to explain?",
	"I can help clarify any specific clauses or terms in your document. What particular section or concept would you like me to break down for you?",
	"This document contains several important legal provisions. Would you like me to explain the obligations, rights, or potential risks involved?",
	"I've identified key sections in your document including definitions, obligations, and remedies. What specific area interests you most?",
	"The document includes standard legal language that I can help translate into plain English. What specific terms or sections are you curious about?",
}
